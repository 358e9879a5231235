package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/suderio/dicer/internal/data"
)

// NewSeed generates a PRNG seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roller owns the single PRNG used for every throw. It is seeded once and safe for concurrent use.
type Roller struct {
	mu     sync.Mutex
	rng    *rand.Rand
	forced []int
}

// NewRoller returns a roller seeded with seed.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// NewRandomRoller returns a roller seeded from crypto/rand.
func NewRandomRoller() (*Roller, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewRoller(seed), nil
}

// Force queues deterministic faces returned by the next rolls, in order. It exists
// for tests. Forced faces still update the repartition.
func (r *Roller) Force(faces ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forced = append(r.forced, faces...)
}

// Roll picks a face of rep, weighted by its current repartition, and records it.
func (r *Roller) Roll(rep *data.ThrowsRepartition) (int, error) {
	r.mu.Lock()
	var face int
	if len(r.forced) > 0 {
		face = r.forced[0]
		r.forced = r.forced[1:]
	} else if total := rep.Total(); total > 0 {
		draw := uint64(r.rng.Int63n(int64(total))) + 1
		var err error
		if face, err = rep.Pick(draw); err != nil {
			r.mu.Unlock()
			return 0, err
		}
	}
	r.mu.Unlock()

	if err := rep.Record(face); err != nil {
		return 0, fmt.Errorf("failed to record throw: %w", err)
	}
	return face, nil
}

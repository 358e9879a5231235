package data

import (
	"errors"
	"fmt"
)

// HistoryLimit bounds the diagnostic roll history kept by a repartition.
const HistoryLimit = 64

// ErrDrawOutOfBounds is returned when a weighted draw falls outside [1, Total].
var ErrDrawOutOfBounds = errors.New("weighted draw out of bounds")

// ThrowsRepartition is the adaptive weight table of a face count. Every face starts
// with a weight equal to the face count; a face that just came up loses half its
// weight while the others creep back toward that baseline, which biases rolls away
// from recent repeats.
type ThrowsRepartition struct {
	Faces   int      `yaml:"faces"`
	Weights []uint32 `yaml:"weights"`
	History []int    `yaml:"history,omitempty"`

	total uint64
}

// NewThrowsRepartition creates the default table for a face count.
func NewThrowsRepartition(faces int) *ThrowsRepartition {
	r := &ThrowsRepartition{
		Faces:   faces,
		Weights: make([]uint32, faces),
	}
	for i := range r.Weights {
		r.Weights[i] = uint32(faces)
	}
	r.recount()
	return r
}

// Total is the cached sum of every face weight.
func (r *ThrowsRepartition) Total() uint64 {
	return r.total
}

// Weight returns the weight of a face in [1, Faces], or 0 when out of range.
func (r *ThrowsRepartition) Weight(face int) uint32 {
	if face < 1 || face > len(r.Weights) {
		return 0
	}
	return r.Weights[face-1]
}

// Pick maps a draw in [1, Total] to the face whose cumulative range contains it,
// walking faces in ascending order.
func (r *ThrowsRepartition) Pick(draw uint64) (int, error) {
	var low, high uint64
	for i, w := range r.Weights {
		low = high + 1
		high += uint64(w)
		if draw >= low && draw <= high {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrDrawOutOfBounds, draw, r.total)
}

// Record incorporates a result: its weight is halved (rounded half up, never
// below 1) and every other face gains 1 up to the face count.
func (r *ThrowsRepartition) Record(face int) error {
	if face < 1 || face > len(r.Weights) {
		return fmt.Errorf("face %d is not part of a %d faced repartition", face, r.Faces)
	}

	ceiling := uint32(r.Faces)
	for i := range r.Weights {
		if i == face-1 {
			r.Weights[i] = halve(r.Weights[i])
			continue
		}
		if r.Weights[i] < ceiling {
			r.Weights[i]++
		}
	}

	r.History = append(r.History, face)
	if len(r.History) > HistoryLimit {
		r.History = r.History[len(r.History)-HistoryLimit:]
	}

	r.recount()
	return nil
}

// Validate checks the weight invariant and refreshes the cached total.
func (r *ThrowsRepartition) Validate() error {
	if r.Faces < 2 {
		return fmt.Errorf("a repartition needs at least 2 faces, got %d", r.Faces)
	}
	if len(r.Weights) != r.Faces {
		return fmt.Errorf("expected %d weights, got %d", r.Faces, len(r.Weights))
	}
	for i, w := range r.Weights {
		if w < 1 || w > uint32(r.Faces) {
			return fmt.Errorf("weight of face %d is %d, must be in [1, %d]", i+1, w, r.Faces)
		}
	}
	r.recount()
	return nil
}

func (r *ThrowsRepartition) recount() {
	var sum uint64
	for _, w := range r.Weights {
		sum += uint64(w)
	}
	r.total = sum
}

// halve is round(w/2) with halves rounded up and a floor of 1.
func halve(w uint32) uint32 {
	h := (w + 1) / 2
	if h < 1 {
		return 1
	}
	return h
}

package rules

import (
	"github.com/suderio/dicer/internal/data"
)

// ContextFromPlayer exposes a player to formulas as "player" and "stats".
func ContextFromPlayer(p *data.PlayerContext) map[string]any {
	stats := make(map[string]any)
	if p == nil {
		return map[string]any{"player": "", "stats": stats}
	}
	for k, v := range p.Stats {
		stats[k] = v
	}
	return map[string]any{
		"player": p.Name,
		"stats":  stats,
	}
}

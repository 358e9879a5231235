package engine

// RecentLimit bounds the recent roll traces kept per player.
const RecentLimit = 10

// TableState is the projection of a table log.
type TableState struct {
	Players map[string]*PlayerLog `json:"players"`
}

// PlayerLog summarizes the activity of one player at the table.
type PlayerLog struct {
	Rolls  int                `json:"rolls"`
	Dices  int                `json:"dices"`
	Recent []string           `json:"recent"`
	Stats  map[string]float64 `json:"stats"`
}

// NewTableState creates an empty clean slate
func NewTableState() *TableState {
	return &TableState{Players: make(map[string]*PlayerLog)}
}

func (s *TableState) player(name string) *PlayerLog {
	p, ok := s.Players[name]
	if !ok {
		p = &PlayerLog{Stats: make(map[string]float64)}
		s.Players[name] = p
	}
	return p
}

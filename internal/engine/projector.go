package engine

// Projector computes TableState from the Event sequence
type Projector struct{}

// NewProjector creates a standard projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Build folds the events in log order.
func (p *Projector) Build(events []Event) (*TableState, error) {
	state := NewTableState()

	for _, evt := range events {
		if err := evt.Apply(state); err != nil {
			return nil, err
		}
	}

	return state, nil
}

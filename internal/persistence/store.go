package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/suderio/dicer/internal/engine"
)

// EventWrapper serializes polymorphic table events to JSONL.
type EventWrapper struct {
	Type engine.EventType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

// Store handles append-only storage of a table log.
type Store struct {
	file *os.File
}

// NewStore opens or creates the file at path for appending lines
func NewStore(path string) (*Store, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	return &Store{file: file}, nil
}

// Append marshals an event and appends it as a JSONL line.
func (s *Store) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	line, err := json.Marshal(EventWrapper{Type: evt.Type(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal wrapper: %w", err)
	}

	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return err
	}
	return s.file.Sync()
}

// Load replays all jsonl lines and unpacks them to an Event slice.
func (s *Store) Load() ([]engine.Event, error) {
	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var events []engine.Event
	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode event wrapper: %w", err)
		}

		evt, err := unmarshalEvent(wrapper.Type, wrapper.Data)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return events, scanner.Err()
}

// Close handles safe shutdown.
func (s *Store) Close() error {
	return s.file.Close()
}

func unmarshalEvent(typ engine.EventType, data json.RawMessage) (engine.Event, error) {
	var evt engine.Event
	switch typ {
	case engine.EventRolled:
		evt = &engine.RolledEvent{}
	case engine.EventStatChanged:
		evt = &engine.StatChangedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type in log: %s", typ)
	}

	if err := json.Unmarshal(data, evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", typ, err)
	}
	return evt, nil
}

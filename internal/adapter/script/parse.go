// Package script reads YAML event scripts, replays them through a
// dispatcher and reports the resulting drawing.
package script

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaptinlin/jsonschema"
	"gopkg.in/yaml.v3"

	"polydraw/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

// DefaultStart is the base time for event offsets when a script has no
// start field.
var DefaultStart = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// Script is a parsed event script.
type Script struct {
	Name   string
	Start  time.Time
	Events []Event
}

// Event is one scripted input. X and Y are nil when absent; At is a Go
// duration string relative to the script start.
type Event struct {
	Kind domain.MessageKind `json:"kind"`
	X    *float64           `json:"x,omitempty"`
	Y    *float64           `json:"y,omitempty"`
	At   string             `json:"at,omitempty"`
}

type document struct {
	Name   string  `json:"name"`
	Start  string  `json:"start"`
	Events []Event `json:"events"`
}

var compiled *jsonschema.Schema

func init() {
	schema, err := jsonschema.NewCompiler().Compile(schemaJSON)
	if err != nil {
		panic(fmt.Sprintf("script: compile schema: %v", err))
	}
	compiled = schema
}

// Parse decodes and validates a YAML event script.
func Parse(data []byte) (*Script, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, invalid("yaml", err.Error())
	}
	if raw == nil {
		return nil, invalid("yaml", "empty document")
	}

	// Round-trip through JSON so the validator sees plain JSON types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, invalid("yaml", err.Error())
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return nil, invalid("yaml", err.Error())
	}

	result := compiled.Validate(instance)
	if !result.IsValid() {
		return nil, invalid("schema", fmt.Sprintf("%s", result.Error()))
	}

	var doc document
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, invalid("decode", err.Error())
	}

	s := &Script{Name: doc.Name, Start: DefaultStart, Events: doc.Events}
	if doc.Start != "" {
		start, err := time.Parse(time.RFC3339Nano, doc.Start)
		if err != nil {
			return nil, invalid("start", err.Error())
		}
		s.Start = start
	}
	return s, nil
}

// Messages converts the script into editor messages, in order.
func (s *Script) Messages() ([]domain.Message, error) {
	msgs := make([]domain.Message, 0, len(s.Events))
	for i, ev := range s.Events {
		msg, err := s.message(ev)
		if err != nil {
			return nil, domain.NewDomainError("Script.Messages", domain.ErrInvalidScript,
				fmt.Sprintf("event %d (%s): %v", i, ev.Kind, err))
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *Script) message(ev Event) (domain.Message, error) {
	switch ev.Kind {
	case domain.KindAddPoint:
		if ev.X == nil || ev.Y == nil {
			return nil, fmt.Errorf("x and y are required")
		}
		if ev.At == "" {
			return nil, fmt.Errorf("at is required")
		}
		offset, err := time.ParseDuration(ev.At)
		if err != nil {
			return nil, err
		}
		return domain.AddPoint{
			Point:     domain.Coord{X: *ev.X, Y: *ev.Y},
			Timestamp: s.Start.Add(offset),
		}, nil
	case domain.KindSetCursorPos:
		if ev.X == nil || ev.Y == nil {
			return domain.SetCursorPos{Position: domain.None[domain.Coord]()}, nil
		}
		return domain.SetCursorPos{Position: domain.Some(domain.Coord{X: *ev.X, Y: *ev.Y})}, nil
	case domain.KindFinishPolygon:
		return domain.FinishPolygon{}, nil
	case domain.KindUndo:
		return domain.Undo{}, nil
	case domain.KindRedo:
		return domain.Redo{}, nil
	default:
		return nil, domain.ErrUnknownMessage
	}
}

func invalid(stage, detail string) error {
	return domain.NewDomainError("Script.Parse", domain.ErrInvalidScript, stage+": "+detail)
}

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventType is the kind of row change carried by a ChangeEvent.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// ParseEventType accepts the event names case-insensitively. An empty string
// means all events.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(strings.ToUpper(strings.TrimSpace(s))); t {
	case EventInsert, EventUpdate, EventDelete, EventAll:
		return t, nil
	case "":
		return EventAll, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// ChangeEvent is a row-level change on a table. New holds the row image for
// inserts and updates, Old for updates and deletes.
type ChangeEvent struct {
	Table string          `json:"table"`
	Type  EventType       `json:"type"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

var ErrNoRowImage = errors.New("change event carries no new row image")

// DecodeNew unmarshals the new row image into dst.
func (e ChangeEvent) DecodeNew(dst any) error {
	if len(e.New) == 0 || string(e.New) == "null" {
		return ErrNoRowImage
	}
	return json.Unmarshal(e.New, dst)
}

// Filter selects events by table and type.
type Filter struct {
	Table string
	Type  EventType
}

func (f Filter) Matches(e ChangeEvent) bool {
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	return f.Type == "" || f.Type == EventAll || f.Type == e.Type
}

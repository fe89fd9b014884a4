// Package save defines a saved game, its metadata and the contract of
// the storage which persists them.
//
// A Save only lives during a save or load operation. The archive file
// written by a Repository is the durable representation.
package save

import (
	"bytes"
	"encoding/json"
	"time"
)

// Names of the entries in a save archive.
const (
	InfoEntryName = "info.json"
	SaveEntryName = "save.json"
)

// Save is a single saved game.
type Save struct {
	// Name of the save on the storage. It is not a path but a file name.
	// It is not written into the archive.
	Name string `json:"-"`

	Info Metadata `json:"info"`

	// GameStateName is a opaque label naming the state the game was in.
	GameStateName string `json:"gameStateName"`

	// SavedProperties is serialized game state produced by the simulation layer.
	// It is stored as is.
	SavedProperties json.RawMessage `json:"savedProperties"`
}

// New returns a Save with default Metadata for the given engine version.
func New(name, engineVersion, gameStateName string, props json.RawMessage) *Save {
	return &Save{
		Name:            name,
		Info:            NewMetadata(engineVersion),
		GameStateName:   gameStateName,
		SavedProperties: props,
	}
}

var jsonNull = []byte("null")

// normalizeProps maps empty payload and JSON null to nil so that
// a nil payload survives the round trip.
func normalizeProps(p json.RawMessage) json.RawMessage {
	if trimmed := bytes.TrimSpace(p); len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil
	}
	return p
}

// Normalize cleans up fields decoded from an archive.
func (s *Save) Normalize() {
	s.SavedProperties = normalizeProps(s.SavedProperties)
}

// ValidPayload reports whether SavedProperties can be written into an
// archive as JSON. Empty payload is valid and written as null.
func (s *Save) ValidPayload() bool {
	if len(normalizeProps(s.SavedProperties)) == 0 {
		return true
	}
	return json.Valid(s.SavedProperties)
}

// Summary describes a save file found in the storage.
type Summary struct {
	Name    string
	Size    int64
	ModTime time.Time

	// Info is nil when Err is not nil.
	Info *Metadata
	Err  error
}

// EventOp is a kind of change on the storage.
type EventOp int

const (
	EventCreate EventOp = iota + 1
	EventWrite
	EventRemove
)

func (op EventOp) String() string {
	switch op {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event notifies a change of a save on the storage.
type Event struct {
	Name string
	Op   EventOp
}

package domain

import "encoding/json"

// ChangeType classifies what happened at a position.
type ChangeType string

const (
	ChangePlace  ChangeType = "place"
	ChangeBreak  ChangeType = "break"
	ChangeUpdate ChangeType = "update"
)

// Change is one position's before/after state transition inside a commit
// batch. Coordinates address a block in the discrete world lattice. State
// ids and property maps are opaque to the server; everything except the
// coordinates is optional.
type Change struct {
	X          int            `json:"x"`
	Y          int            `json:"y"`
	Z          int            `json:"z"`
	OldStateID string         `json:"old_state_id,omitempty"`
	NewStateID string         `json:"new_state_id,omitempty"`
	Type       ChangeType     `json:"type,omitempty"`
	OldProps   map[string]any `json:"old_props,omitempty"`
	NewProps   map[string]any `json:"new_props,omitempty"`
}

// changeWire mirrors Change with pointer coordinates so decoding can tell
// an absent coordinate from zero.
type changeWire struct {
	X          *int           `json:"x"`
	Y          *int           `json:"y"`
	Z          *int           `json:"z"`
	OldStateID string         `json:"old_state_id"`
	NewStateID string         `json:"new_state_id"`
	Type       string         `json:"type"`
	OldProps   map[string]any `json:"old_props"`
	NewProps   map[string]any `json:"new_props"`
}

// EncodeChanges serializes a batch for storage. A nil or empty batch
// encodes as an empty array, never null.
func EncodeChanges(changes []Change) ([]byte, error) {
	if changes == nil {
		changes = []Change{}
	}
	return json.Marshal(changes)
}

// DecodeChanges deserializes a stored batch, best-effort per element.
// A value that is not a JSON array reads as an empty batch. An element
// that is not an object carrying integer x, y, z is dropped and the rest
// survive, so one malformed element never makes a commit unreadable.
func DecodeChanges(data []byte) []Change {
	changes := []Change{}
	if len(data) == 0 {
		return changes
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return changes
	}

	for _, elem := range raw {
		var w changeWire
		if err := json.Unmarshal(elem, &w); err != nil {
			continue
		}
		if w.X == nil || w.Y == nil || w.Z == nil {
			continue
		}
		changes = append(changes, Change{
			X:          *w.X,
			Y:          *w.Y,
			Z:          *w.Z,
			OldStateID: w.OldStateID,
			NewStateID: w.NewStateID,
			Type:       ChangeType(w.Type),
			OldProps:   w.OldProps,
			NewProps:   w.NewProps,
		})
	}
	return changes
}

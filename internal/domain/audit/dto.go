package audit

import (
	"encoding/json"
	"time"
)

type EntryResponse struct {
	ID        string          `json:"id"`
	Action    Action          `json:"action"`
	ActorID   string          `json:"actor_id"`
	ActorName string          `json:"actor_name,omitempty"`
	Field     *string         `json:"field,omitempty"`
	OldValue  json.RawMessage `json:"old_value,omitempty"`
	NewValue  json.RawMessage `json:"new_value,omitempty"`
	Comment   *string         `json:"comment,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Action:    e.Action,
		ActorID:   e.ActorID,
		ActorName: e.ActorName,
		Field:     e.Field,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		Comment:   e.Comment,
		CreatedAt: e.CreatedAt,
	}
}

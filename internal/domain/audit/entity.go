package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/google/uuid"
)

type Action string

const (
	ActionCreated          Action = "created"
	ActionRefreshed        Action = "refreshed"
	ActionCorrection       Action = "correction"
	ActionValidated        Action = "validated"
	ActionReopened         Action = "reopened"
	ActionExported         Action = "exported"
	ActionSentToAccountant Action = "sent_to_accountant"
	ActionArchived         Action = "archived"
)

// Entry is one immutable line of a consolidation's audit trail. Old and new
// values are stored as JSON text and decode back to their original type.
type Entry struct {
	ID              string
	ConsolidationID string
	Action          Action
	ActorID         string
	ActorName       string
	Field           *string
	OldValue        json.RawMessage
	NewValue        json.RawMessage
	Comment         *string
	CreatedAt       time.Time
}

// Option fills the optional parts of an entry.
type Option func(*Entry) error

// WithChange records the field together with its old and new values.
func WithChange(field string, oldValue, newValue interface{}) Option {
	return func(e *Entry) error {
		oldRaw, err := EncodeValue(oldValue)
		if err != nil {
			return fmt.Errorf("encode old value of %s: %w", field, err)
		}
		newRaw, err := EncodeValue(newValue)
		if err != nil {
			return fmt.Errorf("encode new value of %s: %w", field, err)
		}
		e.Field = &field
		e.OldValue = oldRaw
		e.NewValue = newRaw
		return nil
	}
}

func WithComment(comment string) Option {
	return func(e *Entry) error {
		if comment != "" {
			e.Comment = &comment
		}
		return nil
	}
}

// NewEntry builds an entry stamped with the actor and the current time.
func NewEntry(consolidationID string, action Action, actor identity.Actor, now time.Time, opts ...Option) (Entry, error) {
	e := Entry{
		ID:              uuid.New().String(),
		ConsolidationID: consolidationID,
		Action:          action,
		ActorID:         actor.ID,
		ActorName:       actor.Name,
		CreatedAt:       now,
	}
	for _, opt := range opts {
		if err := opt(&e); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}

// EncodeValue serializes v as JSON text; nil stays empty.
func EncodeValue(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// DecodeValue restores a value written by EncodeValue into target.
func DecodeValue(raw json.RawMessage, target interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}

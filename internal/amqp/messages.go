package amqp

import (
	"encoding/json"
	"time"
)

// Message types carried in the envelope's "type" field.
const (
	TypeBudgetExport = "budget.export"
	TypeBudgetDelete = "budget.delete"
)

// Envelope wraps every message so the consumer can dispatch on type before
// decoding the payload.
type Envelope struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

// BudgetExportMessage asks the export worker to write one budget's snapshot
// to the configured backend. It carries only the id; the worker fetches the
// current state from storage so stale messages never export stale data.
type BudgetExportMessage struct {
	BudgetID  string    `json:"budget_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// BudgetDeleteMessage tells the export worker a budget is gone so it can
// drop any exported snapshot.
type BudgetDeleteMessage struct {
	BudgetID  string    `json:"budget_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetExportMessage(budgetID, reason string) *BudgetExportMessage {
	return &BudgetExportMessage{
		BudgetID:  budgetID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func NewBudgetDeleteMessage(budgetID string) *BudgetDeleteMessage {
	return &BudgetDeleteMessage{
		BudgetID:  budgetID,
		Timestamp: time.Now(),
	}
}

func envelope(msgType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Body: body})
}

// DecodeEnvelope parses the outer envelope; the caller decodes Body once it
// knows the type.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

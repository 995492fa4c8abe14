package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spesedash/internal/core"
)

// ExpenseRecordedMessage carries a full expense so consumers never need to
// call back into the producer.
type ExpenseRecordedMessage struct {
	ID          string    `json:"id"`
	Icon        string    `json:"icon,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        string    `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage builds the message for a stored expense.
func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:          e.ID,
		Icon:        e.Icon,
		Category:    e.Category,
		Date:        e.Date.String(),
		AmountCents: e.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Expense converts the message back into a validated domain expense.
func (m *ExpenseRecordedMessage) Expense() (core.Expense, error) {
	if m.ID == "" {
		return core.Expense{}, errors.New("message has no id")
	}
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	e := core.Expense{
		ID:       m.ID,
		Icon:     m.Icon,
		Category: m.Category,
		Date:     d,
		Amount:   core.Money{Cents: m.AmountCents},
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	return e, nil
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

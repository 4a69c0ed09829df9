package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseRecordedMessage carries the full recorded fact so the export
// worker can build a spreadsheet row without reading the database back.
type ExpenseRecordedMessage struct {
	Ref       int64     `json:"ref"`
	OwnerID   int64     `json:"owner_id"`
	Username  string    `json:"username,omitempty"`
	Amount    float64   `json:"amount"`
	Codename  string    `json:"codename"`
	Category  string    `json:"category"` // localized display name
	Created   time.Time `json:"created"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

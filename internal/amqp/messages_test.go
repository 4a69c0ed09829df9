package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseRecordedMessageJSON(t *testing.T) {
	msg := &ExpenseRecordedMessage{
		Ref:       3,
		OwnerID:   1,
		Username:  "tester",
		Amount:    5.0,
		Codename:  "products",
		Category:  "🛒 Продукты",
		Created:   time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC),
		Timestamp: time.Date(2025, time.March, 15, 12, 0, 1, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := ExpenseRecordedMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestExpenseRecordedMessageFromJSONInvalid(t *testing.T) {
	_, err := ExpenseRecordedMessageFromJSON([]byte("{not json"))
	assert.Error(t, err)
}

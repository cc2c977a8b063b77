package services_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductAuditor_Handle(t *testing.T) {
	var buf bytes.Buffer
	auditor := services.NewProductAuditor(zerolog.New(&buf))

	body := []byte(`{"id":"e1","type":"product.created","product_id":3,"actor":"alice","product":{"id":3,"name":"Widget","price":9.99},"occurred_at":"2024-05-01T10:00:00Z"}`)
	require.NoError(t, auditor.Handle(amqp.Delivery{Body: body}))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "product event", entry["message"])
	assert.Equal(t, "product.created", entry["type"])
	assert.Equal(t, float64(3), entry["product_id"])
	assert.Equal(t, "Widget", entry["name"])
	assert.Equal(t, "alice", entry["actor"])
}

func TestProductAuditor_HandleFallsBackToMessageType(t *testing.T) {
	var buf bytes.Buffer
	auditor := services.NewProductAuditor(zerolog.New(&buf))

	require.NoError(t, auditor.Handle(amqp.Delivery{Type: "product.deleted", Body: []byte(`{"product_id":4}`)}))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "product.deleted", entry["type"])
	assert.NotContains(t, entry, "name")
}

func TestProductAuditor_HandleDiscardsMalformedBody(t *testing.T) {
	auditor := services.NewProductAuditor(zerolog.Nop())

	err := auditor.Handle(amqp.Delivery{Body: []byte("not json")})
	assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
}

package services

import (
	"encoding/json"
	"fmt"

	"catalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// ProductAuditor writes consumed product events to the log.
type ProductAuditor struct {
	logger zerolog.Logger
}

// NewProductAuditor creates a ProductAuditor.
func NewProductAuditor(logger zerolog.Logger) *ProductAuditor {
	return &ProductAuditor{logger: logger.With().Str("component", "product_audit").Logger()}
}

// Handle logs one delivery. Undecodable bodies are discarded rather than
// requeued.
func (a *ProductAuditor) Handle(msg amqp.Delivery) error {
	var event ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("decode product event: %v: %w", err, rabbitmq.ErrDiscard)
	}
	if event.Type == "" {
		event.Type = msg.Type
	}

	entry := a.logger.Info().
		Str("event_id", event.ID).
		Str("type", event.Type).
		Uint("product_id", event.ProductID).
		Str("actor", event.Actor).
		Time("occurred_at", event.OccurredAt)
	if event.Product != nil {
		entry = entry.Str("name", event.Product.Name).Float64("price", event.Product.Price)
	}
	entry.Msg("product event")
	return nil
}

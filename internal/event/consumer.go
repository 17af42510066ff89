// Package event consumes product domain events and keeps the search
// index and response cache in step with the document store.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/t-simwa/swiftcart-catalog/pkg/kafka"
)

// Kafka topic constants for product domain events.
const (
	TopicProductCreated = "catalog.product.created"
	TopicProductUpdated = "catalog.product.updated"
	TopicProductDeleted = "catalog.product.deleted"
)

// productEventData is the payload shared by created and updated events.
// Only the ID matters; the canonical document is re-read from the store.
type productEventData struct {
	ID string `json:"id"`
}

// Catalog is the slice of the catalog service the consumer needs.
type Catalog interface {
	SyncProduct(ctx context.Context, id string) error
	RemoveProduct(ctx context.Context, id string) error
}

// Consumer handles product change events for index sync and cache
// invalidation.
type Consumer struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewConsumer creates a new product event consumer.
func NewConsumer(catalog Catalog, logger *slog.Logger) *Consumer {
	return &Consumer{
		catalog: catalog,
		logger:  logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductChanged(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleProductChanged(ctx context.Context, event *pkgkafka.Event) error {
	data, err := decodeProductEvent(event)
	if err != nil {
		return err
	}

	if err := c.catalog.SyncProduct(ctx, data.ID); err != nil {
		return fmt.Errorf("sync product from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "product synced from event",
		slog.String("product_id", data.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	data, err := decodeProductEvent(event)
	if err != nil {
		return err
	}

	if err := c.catalog.RemoveProduct(ctx, data.ID); err != nil {
		return fmt.Errorf("remove product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "product removed from event",
		slog.String("product_id", data.ID),
	)

	return nil
}

func decodeProductEvent(event *pkgkafka.Event) (*productEventData, error) {
	var data productEventData
	if err := event.UnmarshalData(&data); err != nil {
		return nil, fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	if data.ID == "" {
		// Fall back to the envelope when producers omit the payload ID.
		data.ID = event.AggregateID
	}
	if data.ID == "" {
		return nil, fmt.Errorf("%s event without product id", event.EventType)
	}
	return &data, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"catalog/internal/metrics"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxNameLength is the longest product name accepted, in characters.
const MaxNameLength = 255

// Product event types, also used as routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher delivers serialized product events to a broker.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// ProductEvent is the message published after a successful mutation.
type ProductEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	ProductID  uint            `json:"product_id"`
	Product    *models.Product `json:"product,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewProduct is the input of CreateProduct.
type NewProduct struct {
	Name        string
	Price       float64
	Description *string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
	logger zerolog.Logger
}

// NewProductService creates a new ProductService. events may be nil, in
// which case no events are published.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// GetAllProducts retrieves all products in insertion order.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and persists a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input NewProduct) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)

	verr := &models.ValidationError{}
	checkName(verr, input.Name)
	checkPrice(verr, input.Price)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	product := &models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	s.publish(ctx, EventProductCreated, product.ID, product)
	return product, nil
}

// UpdateProduct applies the supplied changes to an existing product.
// Changes that match the stored values are not written, so a request that
// alters nothing leaves updated_at as it was.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, changes models.ProductChanges) (*models.Product, error) {
	verr := &models.ValidationError{}
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		changes.Name = &name
		checkName(verr, name)
	}
	if changes.Price != nil {
		checkPrice(verr, *changes.Price)
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	diff := changes.Diff(*current)
	if diff.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, diff)
	if err != nil {
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	s.publish(ctx, EventProductUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteProduct permanently deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	s.publish(ctx, EventProductDeleted, id, nil)
	return nil
}

// publish never fails the caller; delivery problems are only logged. The
// event names the actor stored in ctx by WithActor, if any.
func (s *ProductService) publish(ctx context.Context, eventType string, productID uint, product *models.Product) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		Actor:      ActorFromContext(ctx),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to marshal product event")
		return
	}

	if err := s.events.Publish(eventType, body); err != nil {
		s.logger.Warn().Err(err).
			Str("event", eventType).
			Uint("product_id", productID).
			Msg("failed to publish product event")
		return
	}
	s.logger.Debug().Str("event", eventType).Uint("product_id", productID).Msg("published product event")
}

func checkName(verr *models.ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("name", "The name field is required.")
	case utf8.RuneCountInString(name) > MaxNameLength:
		verr.Add("name", fmt.Sprintf("The name field must not be greater than %d characters.", MaxNameLength))
	}
}

func checkPrice(verr *models.ValidationError, price float64) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		verr.Add("price", "The price field must be a number.")
	}
}

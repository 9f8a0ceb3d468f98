package iorderrepo

import (
	"context"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/google/uuid"
)

// Repository is the persistence contract for the order collection.
type Repository interface {
	// Insert stores a new order, assigning the next order number. Must run
	// inside a transaction.
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	// Query returns orders matching all supplied filters, newest-first.
	Query(ctx context.Context, filter order.Filter) ([]order.Order, error)
	// GetByID returns order.ErrOrderNotFound when the id is unknown.
	GetByID(ctx context.Context, id uuid.UUID) (order.Order, error)
	// Update overwrites the stored record.
	Update(ctx context.Context, o order.Order) (order.Order, error)
	// Delete removes the record and renumbers the remaining orders so
	// order numbers stay contiguous and chronological. Must run inside a
	// transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	// Search matches trimmed names case-insensitively, newest-first.
	Search(ctx context.Context, q order.SearchQuery) ([]order.Order, error)
}

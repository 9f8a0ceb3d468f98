package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Buggy1111/tlacenka/internal/clock"
	"github.com/Buggy1111/tlacenka/internal/dal/interfaces/iorderrepo"
	"github.com/Buggy1111/tlacenka/internal/dal/interfaces/ioutboxrepo"
	"github.com/Buggy1111/tlacenka/internal/dal/postgres"
	"github.com/Buggy1111/tlacenka/internal/dal/uow"
	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/service/models/outbox"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// ErrPINRequired is returned by Search when the deployment requires a PIN for
// customer order lookup and none was supplied.
var ErrPINRequired = errors.New("pin is required for order lookup")

const (
	defaultCancelWindow = 15 * time.Minute
	notifyTimeout       = 30 * time.Second
	notifyMaxRetries    = 5
)

// unitOfWork binds the order repository to a transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.Repository
}

// Notifier delivers a best-effort operator notification and reports whether
// it was actually sent. An unconfigured notifier reports Enabled false and
// is skipped entirely, including the retry queue.
type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, event order.Event, o order.Order) bool
}

// EventPublisher pushes order lifecycle events to a message queue.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event, o order.Order) error
}

// OrderService is a service for managing orders.
type OrderService struct {
	pgClient     *postgres.Client
	newUOW       func() unitOfWork
	notifier     Notifier
	events       EventPublisher
	outboxRepo   ioutboxrepo.Repository
	clock        clock.Clock
	cancelWindow time.Duration
	requirePIN   bool
	dispatchWG   sync.WaitGroup
}

// Option is a function that configures the OrderService.
type Option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...Option) *OrderService {
	s := &OrderService{
		clock:        clock.NewSystem(),
		cancelWindow: defaultCancelWindow,
		requirePIN:   viper.GetBool("search.require_pin"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		if s.pgClient == nil {
			panic("ordersvc: postgres client is required")
		}
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
func WithPostgresClient(pgClient *postgres.Client) Option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithNotifier sets the operator notifier.
func WithNotifier(n Notifier) Option {
	return func(s *OrderService) {
		s.notifier = n
	}
}

// WithEventPublisher sets the optional order event publisher.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *OrderService) {
		s.events = p
	}
}

// WithOutboxRepository sets the retry queue for failed notifications.
func WithOutboxRepository(r ioutboxrepo.Repository) Option {
	return func(s *OrderService) {
		s.outboxRepo = r
	}
}

// WithClock sets the clock used for timestamps and window checks.
func WithClock(c clock.Clock) Option {
	return func(s *OrderService) {
		s.clock = c
	}
}

// ListFilter carries the admin listing filters.
type ListFilter struct {
	Status      *order.Status
	PackageSize *order.PackageSize
	Period      order.Period
}

// Create persists a new order with a freshly assigned id and order number,
// then notifies the operator best-effort.
func (s *OrderService) Create(ctx context.Context, in order.CreateInput) (order.Order, error) {
	now := s.clock.Now()
	o := order.Order{
		ID:              uuid.New(),
		CustomerName:    in.CustomerName,
		CustomerSurname: in.CustomerSurname,
		PackageSize:     in.PackageSize,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		TotalPrice:      in.TotalPrice,
		Status:          order.StatusPending,
		Notes:           in.Notes,
		PIN:             in.PIN,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = work.Rollback(ctx) }()

	o, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.dispatchEvent(order.EventOrderCreated, o)

	return o, nil
}

// List returns orders matching all supplied filters, newest-first.
func (s *OrderService) List(ctx context.Context, filter ListFilter) ([]order.Order, error) {
	repoFilter := order.Filter{
		Status:      filter.Status,
		PackageSize: filter.PackageSize,
	}
	if from, ok := filter.Period.Start(s.clock.Now()); ok {
		repoFilter.CreatedFrom = &from
	}

	return s.newUOW().OrderRepository().Query(ctx, repoFilter)
}

// Get returns a single order or order.ErrOrderNotFound.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (order.Order, error) {
	return s.newUOW().OrderRepository().GetByID(ctx, id)
}

// Update merges the supplied fields into the stored record. Status changes
// must follow the status machine; terminal statuses reject every transition.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, upd order.Update) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = work.Rollback(ctx) }()

	cur, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	if upd.Status != nil && *upd.Status != cur.Status {
		if !cur.Status.CanTransitionTo(*upd.Status) {
			return order.Order{}, order.ErrInvalidTransition
		}
		cur.Status = *upd.Status
	}
	if upd.CustomerName != nil {
		cur.CustomerName = *upd.CustomerName
	}
	if upd.CustomerSurname != nil {
		cur.CustomerSurname = *upd.CustomerSurname
	}
	if upd.PackageSize != nil {
		cur.PackageSize = *upd.PackageSize
	}
	if upd.Quantity != nil {
		cur.Quantity = *upd.Quantity
	}
	if upd.UnitPrice != nil {
		cur.UnitPrice = *upd.UnitPrice
	}
	if upd.TotalPrice != nil {
		cur.TotalPrice = *upd.TotalPrice
	}
	if upd.Notes != nil {
		cur.Notes = *upd.Notes
	}
	cur.UpdatedAt = s.clock.Now()

	updated, err := work.OrderRepository().Update(ctx, cur)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return updated, nil
}

// Delete removes the order and renumbers the remaining ones in the same
// transaction so order numbers stay contiguous and chronological.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = work.Rollback(ctx) }()

	if err := work.OrderRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Cancel performs a customer-initiated cancellation. It is allowed only while
// the order is not yet cancelled and no more than the cancellation window has
// passed since creation.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = work.Rollback(ctx) }()

	cur, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	if cur.Status == order.StatusCancelled {
		return order.Order{}, order.ErrAlreadyCancelled
	}
	if cur.Status.IsTerminal() {
		return order.Order{}, order.ErrInvalidTransition
	}

	now := s.clock.Now()
	if now.Sub(cur.CreatedAt) > s.cancelWindow {
		return order.Order{}, order.ErrCancelWindowExpired
	}

	cur.Status = order.StatusCancelled
	cur.UpdatedAt = now

	cancelled, err := work.OrderRepository().Update(ctx, cur)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.dispatchEvent(order.EventOrderCancelled, cancelled)

	return cancelled, nil
}

// Search finds a customer's orders by name (and PIN when the deployment
// requires one), newest-first.
func (s *OrderService) Search(ctx context.Context, q order.SearchQuery) ([]order.Order, error) {
	if s.requirePIN && q.PIN == "" {
		return nil, ErrPINRequired
	}

	return s.newUOW().OrderRepository().Search(ctx, q)
}

// dispatchEvent fans the event out to the notifier and the event publisher
// without blocking the caller. Failures are logged and, for notifications,
// queued for retry. The order mutation has already committed; nothing here
// reaches the request path.
func (s *OrderService) dispatchEvent(event order.Event, o order.Order) {
	s.dispatchWG.Add(1)
	go func() {
		defer s.dispatchWG.Done()

		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(notifyCtx)
		g.SetLimit(2)

		if s.notifier != nil && s.notifier.Enabled() {
			g.Go(func() error {
				if sent := s.notifier.Notify(gctx, event, o); !sent {
					s.enqueueNotification(gctx, event, o)
				}

				return nil
			})
		}

		if s.events != nil {
			g.Go(func() error {
				if err := s.events.Publish(gctx, event, o); err != nil {
					slog.Warn("Failed to publish order event", "event", event, "order_id", o.ID, "error", err)
				}

				return nil
			})
		}

		_ = g.Wait()
	}()
}

// WaitDispatch blocks until all in-flight event dispatches finish. Called on
// shutdown so committed orders do not lose their notifications.
func (s *OrderService) WaitDispatch() {
	s.dispatchWG.Wait()
}

func (s *OrderService) enqueueNotification(ctx context.Context, event order.Event, o order.Order) {
	if s.outboxRepo == nil {
		return
	}

	payload, err := json.Marshal(outbox.NotificationPayload{Event: event, Order: o})
	if err != nil {
		slog.Error("Failed to marshal notification payload", "order_id", o.ID, "error", err)

		return
	}

	now := time.Now()
	msg := outbox.Message{
		Event:       string(event),
		Payload:     payload,
		MaxRetries:  notifyMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}
	if err := s.outboxRepo.Insert(ctx, msg); err != nil {
		slog.Error("Failed to enqueue notification for retry", "order_id", o.ID, "error", err)
	}
}

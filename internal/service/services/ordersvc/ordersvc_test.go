package ordersvc

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/Buggy1111/tlacenka/internal/clock"
	"github.com/Buggy1111/tlacenka/internal/dal/interfaces/iorderrepo"
	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/service/models/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeOrderRepo applies the same numbering policy as the Postgres repository:
// max+1 on insert, renumber to contiguous chronological 1..n on delete.
type fakeOrderRepo struct {
	orders map[uuid.UUID]order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]order.Order{}}
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	maxNum := 0
	for _, existing := range r.orders {
		if existing.OrderNumber > maxNum {
			maxNum = existing.OrderNumber
		}
	}
	o.OrderNumber = maxNum + 1
	r.orders[o.ID] = o

	return o, nil
}

func (r *fakeOrderRepo) Query(_ context.Context, filter order.Filter) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.PackageSize != nil && o.PackageSize != *filter.PackageSize {
			continue
		}
		if filter.CreatedFrom != nil && o.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}

	return o, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o order.Order) (order.Order, error) {
	if _, ok := r.orders[o.ID]; !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	r.orders[o.ID] = o

	return o, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.orders, id)

	remaining := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		remaining = append(remaining, o)
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].CreatedAt.Before(remaining[j].CreatedAt)
	})
	for i, o := range remaining {
		o.OrderNumber = i + 1
		r.orders[o.ID] = o
	}

	return nil
}

func (r *fakeOrderRepo) Search(_ context.Context, q order.SearchQuery) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.orders {
		if !strings.EqualFold(strings.TrimSpace(o.CustomerName), strings.TrimSpace(q.FirstName)) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(o.CustomerSurname), strings.TrimSpace(q.LastName)) {
			continue
		}
		if q.PIN != "" && o.PIN != q.PIN {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

type fakeUOW struct {
	repo *fakeOrderRepo
}

func (u *fakeUOW) Begin(context.Context) error            { return nil }
func (u *fakeUOW) Commit(context.Context) error           { return nil }
func (u *fakeUOW) Rollback(context.Context) error         { return nil }
func (u *fakeUOW) OrderRepository() iorderrepo.Repository { return u.repo }

type fakeNotifier struct {
	sent     []order.Event
	failed   bool
	disabled bool
}

func (n *fakeNotifier) Enabled() bool { return !n.disabled }

func (n *fakeNotifier) Notify(_ context.Context, event order.Event, _ order.Order) bool {
	n.sent = append(n.sent, event)

	return !n.failed
}

type fakeOutboxRepo struct {
	messages []outbox.Message
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	r.messages = append(r.messages, msg)

	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.Message, error) {
	return r.messages, nil
}

func (r *fakeOutboxRepo) Delete(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

func newTestService(repo *fakeOrderRepo, clk clock.Clock, opts ...Option) *OrderService {
	s := &OrderService{
		clock:        clk,
		cancelWindow: defaultCancelWindow,
		newUOW:       func() unitOfWork { return &fakeUOW{repo: repo} },
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func createInput() order.CreateInput {
	return order.CreateInput{
		CustomerName:    "Jan",
		CustomerSurname: "Novák",
		PackageSize:     order.PackageSize1Kg,
		Quantity:        3,
		UnitPrice:       decimal.NewFromInt(90),
		TotalPrice:      decimal.NewFromInt(270),
	}
}

func TestOrderService_Create(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, clock.NewFixed(now), WithNotifier(notifier))

	o, err := svc.Create(context.Background(), createInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if o.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if o.OrderNumber != 1 {
		t.Fatalf("expected order number 1, got %d", o.OrderNumber)
	}
	if o.Status != order.StatusPending {
		t.Fatalf("expected pending status, got %s", o.Status)
	}
	if !o.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, o.CreatedAt)
	}
	svc.WaitDispatch()
	if len(notifier.sent) != 1 || notifier.sent[0] != order.EventOrderCreated {
		t.Fatalf("expected one created notification, got %v", notifier.sent)
	}

	second, err := svc.Create(context.Background(), createInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.OrderNumber != 2 {
		t.Fatalf("expected order number 2, got %d", second.OrderNumber)
	}
}

func TestOrderService_CreateQueuesFailedNotification(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	outboxRepo := &fakeOutboxRepo{}
	svc := newTestService(repo, clock.NewSystem(),
		WithNotifier(&fakeNotifier{failed: true}),
		WithOutboxRepository(outboxRepo),
	)

	if _, err := svc.Create(context.Background(), createInput()); err != nil {
		t.Fatalf("expected creation to succeed despite notification failure, got %v", err)
	}
	svc.WaitDispatch()
	if len(outboxRepo.messages) != 1 {
		t.Fatalf("expected 1 queued notification, got %d", len(outboxRepo.messages))
	}
	if outboxRepo.messages[0].Event != string(order.EventOrderCreated) {
		t.Fatalf("unexpected queued event %s", outboxRepo.messages[0].Event)
	}
}

func TestOrderService_CreateSkipsDisabledNotifier(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	notifier := &fakeNotifier{disabled: true}
	outboxRepo := &fakeOutboxRepo{}
	svc := newTestService(repo, clock.NewSystem(),
		WithNotifier(notifier),
		WithOutboxRepository(outboxRepo),
	)

	if _, err := svc.Create(context.Background(), createInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	svc.WaitDispatch()
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no delivery attempt, got %v", notifier.sent)
	}
	if len(outboxRepo.messages) != 0 {
		t.Fatalf("expected no queued retries, got %d", len(outboxRepo.messages))
	}
}

func TestOrderService_DeleteRenumbers(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()

	var orders []order.Order
	for i := 0; i < 3; i++ {
		svc := newTestService(repo, clock.NewFixed(base.Add(time.Duration(i)*time.Hour)))
		o, err := svc.Create(context.Background(), createInput())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		orders = append(orders, o)
	}

	svc := newTestService(repo, clock.NewFixed(base.Add(3*time.Hour)))
	if err := svc.Delete(context.Background(), orders[1].ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first, _ := repo.GetByID(context.Background(), orders[0].ID)
	third, _ := repo.GetByID(context.Background(), orders[2].ID)
	if first.OrderNumber != 1 {
		t.Fatalf("expected oldest order to keep number 1, got %d", first.OrderNumber)
	}
	if third.OrderNumber != 2 {
		t.Fatalf("expected youngest order renumbered to 2, got %d", third.OrderNumber)
	}

	if err := svc.Delete(context.Background(), orders[1].ID); err != order.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderService_Cancel(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	newOrder := func(t *testing.T) (*fakeOrderRepo, order.Order) {
		t.Helper()
		repo := newFakeOrderRepo()
		o, err := newTestService(repo, clock.NewFixed(created)).Create(context.Background(), createInput())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		return repo, o
	}

	t.Run("at the window boundary succeeds", func(t *testing.T) {
		repo, o := newOrder(t)
		notifier := &fakeNotifier{}
		svc := newTestService(repo, clock.NewFixed(created.Add(15*time.Minute)), WithNotifier(notifier))

		cancelled, err := svc.Cancel(context.Background(), o.ID)
		if err != nil {
			t.Fatalf("expected cancellation at exactly 15 minutes, got %v", err)
		}
		if cancelled.Status != order.StatusCancelled {
			t.Fatalf("expected cancelled status, got %s", cancelled.Status)
		}
		svc.WaitDispatch()
		if len(notifier.sent) != 1 || notifier.sent[0] != order.EventOrderCancelled {
			t.Fatalf("expected cancellation notification, got %v", notifier.sent)
		}
	})

	t.Run("past the window fails", func(t *testing.T) {
		repo, o := newOrder(t)
		svc := newTestService(repo, clock.NewFixed(created.Add(15*time.Minute+time.Second)))

		if _, err := svc.Cancel(context.Background(), o.ID); err != order.ErrCancelWindowExpired {
			t.Fatalf("expected ErrCancelWindowExpired, got %v", err)
		}
	})

	t.Run("second cancellation fails distinctly", func(t *testing.T) {
		repo, o := newOrder(t)
		svc := newTestService(repo, clock.NewFixed(created.Add(time.Minute)))

		if _, err := svc.Cancel(context.Background(), o.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.Cancel(context.Background(), o.ID); err != order.ErrAlreadyCancelled {
			t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
		}
	})

	t.Run("completed order cannot be cancelled", func(t *testing.T) {
		repo, o := newOrder(t)
		svc := newTestService(repo, clock.NewFixed(created.Add(time.Minute)))

		completed := order.StatusCompleted
		if _, err := svc.Update(context.Background(), o.ID, order.Update{Status: &completed}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.Cancel(context.Background(), o.ID); err != order.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		repo, _ := newOrder(t)
		svc := newTestService(repo, clock.NewFixed(created))

		if _, err := svc.Cancel(context.Background(), uuid.New()); err != order.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderService_UpdateTransitions(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := newTestService(repo, clock.NewSystem())

	o, err := svc.Create(context.Background(), createInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	confirmed := order.StatusConfirmed
	updated, err := svc.Update(context.Background(), o.ID, order.Update{Status: &confirmed})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Status != order.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}

	completed := order.StatusCompleted
	if _, err := svc.Update(context.Background(), o.ID, order.Update{Status: &completed}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	pending := order.StatusPending
	if _, err := svc.Update(context.Background(), o.ID, order.Update{Status: &pending}); err != order.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition out of completed, got %v", err)
	}

	notes := "urgent"
	updated, err = svc.Update(context.Background(), o.ID, order.Update{Notes: &notes})
	if err != nil {
		t.Fatalf("expected non-status fields to stay editable, got %v", err)
	}
	if updated.Notes != "urgent" {
		t.Fatalf("expected notes merged, got %q", updated.Notes)
	}
}

func TestOrderService_ListPeriodFilter(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()

	yesterdaySvc := newTestService(repo, clock.NewFixed(now.Add(-26*time.Hour)))
	if _, err := yesterdaySvc.Create(context.Background(), createInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	todaySvc := newTestService(repo, clock.NewFixed(now.Add(-2*time.Hour)))
	todayOrder, err := todaySvc.Create(context.Background(), createInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	svc := newTestService(repo, clock.NewFixed(now))

	todays, err := svc.List(context.Background(), ListFilter{Period: order.PeriodToday})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(todays) != 1 || todays[0].ID != todayOrder.ID {
		t.Fatalf("expected only the today order, got %d orders", len(todays))
	}

	all, err := svc.List(context.Background(), ListFilter{Period: order.PeriodAll})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both orders, got %d", len(all))
	}
	if !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}
}

func TestOrderService_ListStatusFilter(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := newTestService(repo, clock.NewSystem())

	o, err := svc.Create(context.Background(), createInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), createInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	confirmed := order.StatusConfirmed
	if _, err := svc.Update(context.Background(), o.ID, order.Update{Status: &confirmed}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := svc.List(context.Background(), ListFilter{Status: &confirmed, Period: order.PeriodAll})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != o.ID {
		t.Fatalf("expected only the confirmed order, got %d orders", len(got))
	}
}

func TestOrderService_Search(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := newTestService(repo, clock.NewSystem())

	in := createInput()
	in.PIN = "1234"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := svc.Search(context.Background(), order.SearchQuery{FirstName: "  JAN ", LastName: "novák"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected case-insensitive match, got %d orders", len(got))
	}

	got, err = svc.Search(context.Background(), order.SearchQuery{FirstName: "Petr", LastName: "Novák"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no match, got %d orders", len(got))
	}

	t.Run("pin required when configured", func(t *testing.T) {
		gated := newTestService(repo, clock.NewSystem())
		gated.requirePIN = true

		if _, err := gated.Search(context.Background(), order.SearchQuery{FirstName: "Jan", LastName: "Novák"}); err != ErrPINRequired {
			t.Fatalf("expected ErrPINRequired, got %v", err)
		}

		got, err := gated.Search(context.Background(), order.SearchQuery{FirstName: "Jan", LastName: "Novák", PIN: "1234"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected pin-gated match, got %d orders", len(got))
		}

		got, err = gated.Search(context.Background(), order.SearchQuery{FirstName: "Jan", LastName: "Novák", PIN: "9999"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected wrong pin to match nothing, got %d orders", len(got))
		}
	})
}

func TestOrderService_Stats(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := newTestService(repo, clock.NewSystem())

	small := createInput() // 3 × 90 = 270, 1kg
	if _, err := svc.Create(context.Background(), small); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	big := order.CreateInput{
		CustomerName:    "Petr",
		CustomerSurname: "Svoboda",
		PackageSize:     order.PackageSize2Kg,
		Quantity:        2,
		UnitPrice:       decimal.NewFromInt(175),
		TotalPrice:      decimal.NewFromInt(350),
	}
	o, err := svc.Create(context.Background(), big)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cancelled := order.StatusCancelled
	if _, err := svc.Update(context.Background(), o.ID, order.Update{Status: &cancelled}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats, err := svc.Stats(context.Background(), order.PeriodAll)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stats.Summary.TotalOrders != 2 {
		t.Fatalf("expected 2 orders, got %d", stats.Summary.TotalOrders)
	}
	if stats.Summary.TotalQuantity != 5 {
		t.Fatalf("expected quantity 5, got %d", stats.Summary.TotalQuantity)
	}
	if stats.Summary.TotalWeightKg != 7 {
		t.Fatalf("expected weight 7kg, got %d", stats.Summary.TotalWeightKg)
	}
	if !stats.Summary.TotalRevenue.Equal(decimal.NewFromInt(620)) {
		t.Fatalf("expected revenue 620, got %s", stats.Summary.TotalRevenue)
	}
	// costs: 3×35 + 2×90 = 285, margin 620-285 = 335
	if !stats.Summary.TotalMargin.Equal(decimal.NewFromInt(335)) {
		t.Fatalf("expected margin 335, got %s", stats.Summary.TotalMargin)
	}
	if !stats.Summary.AverageOrderValue.Equal(decimal.NewFromInt(310)) {
		t.Fatalf("expected average 310, got %s", stats.Summary.AverageOrderValue)
	}

	if len(stats.ByPackageSize) != 2 {
		t.Fatalf("expected 2 package size groups, got %d", len(stats.ByPackageSize))
	}
	if stats.ByPackageSize[0].PackageSize != order.PackageSize1Kg || stats.ByPackageSize[0].Orders != 1 {
		t.Fatalf("unexpected 1kg group %+v", stats.ByPackageSize[0])
	}

	if len(stats.ByStatus) != 2 {
		t.Fatalf("expected 2 status groups, got %d", len(stats.ByStatus))
	}
	if stats.ByStatus[0].Status != order.StatusPending || stats.ByStatus[1].Status != order.StatusCancelled {
		t.Fatalf("unexpected status groups %+v", stats.ByStatus)
	}
}

func TestOrderService_GetIdempotentRead(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := newTestService(repo, clock.NewSystem())

	o, err := svc.Create(context.Background(), createInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first, err := svc.Get(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Get(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Fatal("expected identical reads without intervening writes")
	}

	if _, err := svc.Get(context.Background(), uuid.New()); err != order.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

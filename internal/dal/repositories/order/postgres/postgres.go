package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Buggy1111/tlacenka/internal/dal/postgres"
	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// orderNumberLockID serializes order-number assignment and renumbering.
// Insert and Delete take this advisory lock inside their transaction so a
// concurrent create cannot race a delete-time renumber.
const orderNumberLockID int64 = 730415001

const orderColumns = "id, order_number, customer_name, customer_surname, package_size, " +
	"quantity, unit_price::text, total_price::text, status, notes, pin, created_at, updated_at"

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id              uuid.UUID
	OrderNumber     int
	CustomerName    string
	CustomerSurname string
	PackageSize     string
	Quantity        int
	UnitPrice       string
	TotalPrice      string
	Status          string
	Notes           string
	Pin             string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	pkgSize, err := order.ParsePackageSize(o.PackageSize)
	if err != nil {
		return nil, err
	}
	unitPrice, err := decimal.NewFromString(o.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit price: %w", err)
	}
	totalPrice, err := decimal.NewFromString(o.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total price: %w", err)
	}

	return &order.Order{
		ID:              o.Id,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerSurname: o.CustomerSurname,
		PackageSize:     pkgSize,
		Quantity:        o.Quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		Status:          status,
		Notes:           o.Notes,
		PIN:             o.Pin,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.OrderNumber,
		&dal.CustomerName,
		&dal.CustomerSurname,
		&dal.PackageSize,
		&dal.Quantity,
		&dal.UnitPrice,
		&dal.TotalPrice,
		&dal.Status,
		&dal.Notes,
		&dal.Pin,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

type OrderRepository struct {
	conn postgres.Querier
}

func NewOrderRepository(conn postgres.Querier) *OrderRepository {
	return &OrderRepository{
		conn: conn,
	}
}

// Insert stores a new order. The order number is max(existing)+1, computed in
// the same statement under an advisory transaction lock; this keeps numbers
// unique under concurrent creates while delete-time renumbering keeps them
// contiguous.
func (r *OrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	if _, err := r.conn.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", orderNumberLockID); err != nil {
		return order.Order{}, fmt.Errorf("failed to take order number lock: %w", err)
	}

	query, args, err := sq.Insert("orders").
		Columns(
			"id",
			"order_number",
			"customer_name",
			"customer_surname",
			"package_size",
			"quantity",
			"unit_price",
			"total_price",
			"status",
			"notes",
			"pin",
			"created_at",
			"updated_at",
		).
		Values(
			o.ID,
			sq.Expr("(SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders)"),
			o.CustomerName,
			o.CustomerSurname,
			o.PackageSize.String(),
			o.Quantity,
			o.UnitPrice.String(),
			o.TotalPrice.String(),
			o.Status.String(),
			o.Notes,
			o.PIN,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING order_number").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.OrderNumber); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// Query retrieves orders matching all supplied filters, newest-first.
func (r *OrderRepository) Query(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	builder := sq.Select(orderColumns).
		From("orders").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": filter.Status.String()})
	}
	if filter.PackageSize != nil {
		builder = builder.Where(sq.Eq{"package_size": filter.PackageSize.String()})
	}
	if filter.CreatedFrom != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.CreatedFrom})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// GetByID returns the order or order.ErrOrderNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	query, args, err := sq.Select(orderColumns).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return *model, nil
}

// Update overwrites all mutable fields of the stored record.
func (r *OrderRepository) Update(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := sq.Update("orders").
		Set("customer_name", o.CustomerName).
		Set("customer_surname", o.CustomerSurname).
		Set("package_size", o.PackageSize.String()).
		Set("quantity", o.Quantity).
		Set("unit_price", o.UnitPrice.String()).
		Set("total_price", o.TotalPrice.String()).
		Set("status", o.Status.String()).
		Set("notes", o.Notes).
		Set("updated_at", o.UpdatedAt).
		Where(sq.Eq{"id": o.ID}).
		Suffix("RETURNING " + orderColumns).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to update order: %w", err)
	}

	return *model, nil
}

// renumberSQL reassigns order numbers 1..n in chronological order. The unique
// constraint on order_number is deferred to commit, so the shuffle is safe.
const renumberSQL = `
	WITH ranked AS (
		SELECT id, ROW_NUMBER() OVER (ORDER BY created_at ASC, order_number ASC) AS rn
		FROM orders
	)
	UPDATE orders
	SET order_number = ranked.rn
	FROM ranked
	WHERE orders.id = ranked.id AND orders.order_number <> ranked.rn
`

// Delete removes the record and renumbers the remaining orders in the same
// transaction.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", orderNumberLockID); err != nil {
		return fmt.Errorf("failed to take order number lock: %w", err)
	}

	query, args, err := sq.Delete("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	if _, err := r.conn.Exec(ctx, renumberSQL); err != nil {
		return fmt.Errorf("failed to renumber orders: %w", err)
	}

	return nil
}

// Search matches trimmed names case-insensitively, newest-first. A non-empty
// PIN in the query must match exactly.
func (r *OrderRepository) Search(ctx context.Context, q order.SearchQuery) ([]order.Order, error) {
	builder := sq.Select(orderColumns).
		From("orders").
		Where(sq.Expr("LOWER(TRIM(customer_name)) = LOWER(?)", strings.TrimSpace(q.FirstName))).
		Where(sq.Expr("LOWER(TRIM(customer_surname)) = LOWER(?)", strings.TrimSpace(q.LastName))).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if q.PIN != "" {
		builder = builder.Where(sq.Eq{"pin": q.PIN})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]order.Order, error) {
	result := make([]order.Order, 0)
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

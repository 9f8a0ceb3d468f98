package uow

import (
	"context"

	"github.com/Buggy1111/tlacenka/internal/dal/interfaces/iorderrepo"
	"github.com/Buggy1111/tlacenka/internal/dal/postgres"
	orderrepo "github.com/Buggy1111/tlacenka/internal/dal/repositories/order/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork binds repositories to a shared pgx transaction. Without Begin
// the repositories run against the pool directly (reads).
type UnitOfWork struct {
	pool      *pgxpool.Pool
	tx        pgx.Tx
	orderRepo iorderrepo.Repository
}

func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	return &UnitOfWork{
		pool:      client.Pool(),
		orderRepo: orderrepo.NewOrderRepository(client.Pool()),
	}
}

func (u *UnitOfWork) OrderRepository() iorderrepo.Repository {
	return u.orderRepo
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewOrderRepository(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}

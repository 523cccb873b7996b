package unitofwork

import (
	"context"

	"stock-ticker-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	StockRepository() contract.StockRepository
	ExchangeRepository() contract.ExchangeRepository
}

// FILE: internal/repository/contract/stock_repository.go
// Repository interfaces for the stock catalog
package contract

import (
	"context"

	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/repository/specification"
)

type StockRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Stock, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CreateInBatches(ctx context.Context, stocks []*entity.Stock, batchSize int) error
	DeleteAll(ctx context.Context) error
}

type ExchangeRepository interface {
	Upsert(ctx context.Context, exchange *entity.Exchange) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exchange, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error)
}

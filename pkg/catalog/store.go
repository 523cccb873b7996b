// Package catalog adapts the stock_list table to ticker.CatalogStore.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/repository/specification"
	"stock-ticker-be/internal/repository/unitofwork"
	"stock-ticker-be/pkg/ticker"
)

const DefaultLookupLimit = 50

// Store reads the catalog through the repository layer. Every failure is
// reported as ticker.ErrStoreUnavailable.
type Store struct {
	factory      unitofwork.RepositoryFactory
	searchConfig string
	limit        int
}

var _ ticker.CatalogStore = (*Store)(nil)

func NewStore(factory unitofwork.RepositoryFactory, searchConfig string, limit int) *Store {
	if searchConfig == "" {
		searchConfig = "english"
	}
	if limit <= 0 {
		limit = DefaultLookupLimit
	}
	return &Store{factory: factory, searchConfig: searchConfig, limit: limit}
}

func (s *Store) ExactSymbol(ctx context.Context, symbol string) ([]ticker.CatalogRecord, error) {
	return s.find(ctx, specification.BySymbol{Symbol: symbol})
}

func (s *Store) FuzzySymbol(ctx context.Context, fragment string) ([]ticker.CatalogRecord, error) {
	return s.find(ctx, specification.SymbolContains{Fragment: fragment})
}

func (s *Store) FullTextName(ctx context.Context, name string) ([]ticker.CatalogRecord, error) {
	return s.find(ctx, specification.NameTextSearch{Config: s.searchConfig, Query: name})
}

func (s *Store) find(ctx context.Context, spec specification.Specification) ([]ticker.CatalogRecord, error) {
	uow := s.factory.NewUnitOfWork(ctx)
	stocks, err := uow.StockRepository().FindAll(ctx, spec, specification.Limit{N: s.limit})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ticker.ErrStoreUnavailable, err)
	}

	records := make([]ticker.CatalogRecord, 0, len(stocks))
	for _, st := range stocks {
		records = append(records, ToRecord(st))
	}
	return records, nil
}

func ToRecord(s *entity.Stock) ticker.CatalogRecord {
	return ticker.CatalogRecord{
		ID:                s.Id.String(),
		Symbol:            s.Symbol,
		Name:              s.Name,
		Price:             s.Price,
		Exchange:          s.Exchange,
		ExchangeShortName: s.ExchangeShortName,
		Type:              s.Type,
		Country:           ticker.Market(strings.ToUpper(s.Country)),
	}
}

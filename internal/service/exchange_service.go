// FILE: internal/service/exchange_service.go
package service

import (
	"context"
	"strings"

	"stock-ticker-be/internal/dto"
	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/repository/specification"
	"stock-ticker-be/internal/repository/unitofwork"
	"stock-ticker-be/pkg/ticker"
)

const (
	defaultExchangePageSize = 100
	defaultStockPageSize    = 50
)

// IExchangeService exposes how ingestion classified each exchange.
type IExchangeService interface {
	List(ctx context.Context, req *dto.ExchangeListRequest) ([]dto.ExchangeResponse, error)
	Get(ctx context.Context, shortName string) (*dto.ExchangeResponse, error)
	Stocks(ctx context.Context, shortName string, req *dto.ExchangeStocksRequest) ([]dto.StockResponse, error)
}

type exchangeService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewExchangeService(uowFactory unitofwork.RepositoryFactory) IExchangeService {
	return &exchangeService{uowFactory: uowFactory}
}

func (s *exchangeService) List(ctx context.Context, req *dto.ExchangeListRequest) ([]dto.ExchangeResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultExchangePageSize
	}
	specs := []specification.Specification{
		specification.OrderBy{Field: "instrument_count", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	}
	if req.Country != "" {
		market, err := ticker.ParseMarket(req.Country)
		if err != nil {
			return nil, err
		}
		specs = append(specs, specification.ByCountry{Country: market.String()})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	exchanges, err := uow.ExchangeRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ExchangeResponse, 0, len(exchanges))
	for _, e := range exchanges {
		res = append(res, toExchangeResponse(e))
	}
	return res, nil
}

// Get returns nil, nil for an unknown exchange.
func (s *exchangeService) Get(ctx context.Context, shortName string) (*dto.ExchangeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	e, err := uow.ExchangeRepository().FindOne(ctx, specification.Filter("short_name", strings.ToUpper(shortName)))
	if err != nil || e == nil {
		return nil, err
	}
	res := toExchangeResponse(e)
	return &res, nil
}

// Stocks lists an exchange's instruments, highest priced first. It returns
// nil, nil for an unknown exchange.
func (s *exchangeService) Stocks(ctx context.Context, shortName string, req *dto.ExchangeStocksRequest) ([]dto.StockResponse, error) {
	shortName = strings.ToUpper(shortName)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	e, err := uow.ExchangeRepository().FindOne(ctx, specification.Filter("short_name", shortName))
	if err != nil || e == nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultStockPageSize
	}
	stocks, err := uow.StockRepository().FindAll(ctx,
		specification.ByExchangeShortName{ShortName: shortName},
		specification.OrderByPriceDesc{},
		specification.Limit{N: limit},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.StockResponse, 0, len(stocks))
	for _, st := range stocks {
		res = append(res, dto.StockResponse{
			Id:                st.Id.String(),
			Symbol:            st.Symbol,
			Name:              st.Name,
			Price:             st.Price,
			Exchange:          st.Exchange,
			ExchangeShortName: st.ExchangeShortName,
			Type:              st.Type,
			Country:           st.Country,
		})
	}
	return res, nil
}

func toExchangeResponse(e *entity.Exchange) dto.ExchangeResponse {
	return dto.ExchangeResponse{
		ShortName:       e.ShortName,
		Country:         e.Country,
		Source:          e.Source,
		Evidence:        e.Evidence,
		InstrumentCount: e.InstrumentCount,
		UpdatedAt:       e.UpdatedAt,
	}
}

package ingest

import (
	"context"
	"fmt"

	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/internal/repository/unitofwork"
)

const DefaultBatchSize = 1000

// Summary reports what a load wrote.
type Summary struct {
	Instruments int            `json:"instruments"`
	Exchanges   int            `json:"exchanges"`
	ByCountry   map[string]int `json:"byCountry"`
}

// Loader replaces the catalog with a freshly classified instrument list.
type Loader struct {
	factory   unitofwork.RepositoryFactory
	batchSize int
	logger    logger.ILogger
}

func NewLoader(factory unitofwork.RepositoryFactory, batchSize int, log logger.ILogger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Loader{factory: factory, batchSize: batchSize, logger: log}
}

// Plan converts the groups into catalog rows without touching the database.
func Plan(groups Groups, classes map[string]Classification) ([]*entity.Stock, []*entity.Exchange, Summary) {
	summary := Summary{ByCountry: map[string]int{}}
	stocks := make([]*entity.Stock, 0, groups.Count())
	exchanges := make([]*entity.Exchange, 0, len(groups))

	for _, exchange := range groups.Exchanges() {
		country := CountryOf(classes, exchange)
		list := groups[exchange]

		for _, inst := range list {
			stocks = append(stocks, toStock(inst, country.String()))
		}
		summary.ByCountry[country.String()] += len(list)

		cl, ok := classes[exchange]
		if !ok {
			cl = Classification{Exchange: exchange, Country: country, Source: SourceDefault}
		}
		exchanges = append(exchanges, &entity.Exchange{
			ShortName:       exchange,
			Country:         country.String(),
			Source:          cl.Source,
			Evidence:        cl.Evidence,
			InstrumentCount: len(list),
		})
	}

	summary.Instruments = len(stocks)
	summary.Exchanges = len(exchanges)
	return stocks, exchanges, summary
}

// Load writes everything in one transaction, so readers see either the old
// catalog or the new one.
func (l *Loader) Load(ctx context.Context, groups Groups, classes map[string]Classification) (Summary, error) {
	stocks, exchanges, summary := Plan(groups, classes)

	uow := l.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return Summary{}, err
	}
	defer uow.Rollback()

	if err := uow.StockRepository().DeleteAll(ctx); err != nil {
		return Summary{}, fmt.Errorf("clear catalog: %w", err)
	}
	if err := uow.StockRepository().CreateInBatches(ctx, stocks, l.batchSize); err != nil {
		return Summary{}, fmt.Errorf("insert catalog: %w", err)
	}
	for _, ex := range exchanges {
		if err := uow.ExchangeRepository().Upsert(ctx, ex); err != nil {
			return Summary{}, fmt.Errorf("upsert exchange %s: %w", ex.ShortName, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return Summary{}, err
	}

	l.logger.Info("ingest.load", "Catalog replaced", map[string]interface{}{
		"instruments": summary.Instruments,
		"exchanges":   summary.Exchanges,
		"byCountry":   summary.ByCountry,
	})
	return summary, nil
}

func toStock(inst Instrument, country string) *entity.Stock {
	s := &entity.Stock{
		Symbol:  inst.Symbol,
		Name:    inst.Name,
		Price:   inst.Price,
		Type:    inst.Type,
		Country: country,
	}
	if inst.Exchange != nil {
		s.Exchange = *inst.Exchange
	}
	s.ExchangeShortName = inst.exchangeShortName()
	return s
}

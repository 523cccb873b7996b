package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/repository/contract"
	"stock-ticker-be/internal/repository/unitofwork"
	"stock-ticker-be/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func inst(symbol, exchange string) Instrument {
	i := Instrument{Symbol: symbol, Name: symbol + " Corp", Type: "stock"}
	if exchange != "" {
		i.ExchangeShortName = strp(exchange)
		i.Exchange = strp(exchange + " Exchange")
	}
	return i
}

func TestGroupByExchange(t *testing.T) {
	groups := GroupByExchange([]Instrument{
		inst("TSLA", "NASDAQ"),
		inst("A", ""),
		inst("MSFT", "NASDAQ"),
		{Symbol: "B", ExchangeShortName: strp("  ")},
		inst("0700.HK", "HKSE"),
	})

	assert.Equal(t, []string{"HKSE", "NASDAQ", UnknownExchange}, groups.Exchanges())
	assert.Len(t, groups["NASDAQ"], 2)
	assert.Equal(t, "TSLA", groups["NASDAQ"][0].Symbol)
	// Unknown instruments accumulate rather than replace each other.
	assert.Len(t, groups[UnknownExchange], 2)
	assert.Equal(t, 5, groups.Count())
}

type fakeSearcher struct {
	mu       sync.Mutex
	currency map[string]string
	fail     map[string]bool
	calls    []string
}

func (f *fakeSearcher) SearchSymbol(ctx context.Context, symbol string) ([]SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	if f.fail[symbol] {
		return nil, errors.New("FMP API returned status 500")
	}
	cur, ok := f.currency[symbol]
	if !ok {
		return nil, nil
	}
	return []SearchResult{{Symbol: symbol, Currency: cur}}, nil
}

func TestClassifier_Classify(t *testing.T) {
	groups := GroupByExchange([]Instrument{
		inst("TSLA", "NASDAQ"),
		inst("IBM", "NYSE"),
		inst("0700.HK", "HKSE"),
		inst("600519.SS", "SHH"),
		inst("000001.SZ", "SHZ"),
		inst("SAP.DE", "XETRA"),
		inst("RY.TO", "TSX"),
		inst("ZZZ", "OTC"),
		inst("X", ""),
	})
	searcher := &fakeSearcher{
		currency: map[string]string{"600519.SS": "CNY", "SAP.DE": "eur", "ZZZ": "usd"},
		fail:     map[string]bool{"000001.SZ": true},
	}

	classes, err := NewClassifier(searcher, 2, nil).Classify(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, classes, len(groups))

	tests := []struct {
		exchange string
		country  ticker.Market
		source   string
	}{
		{"NASDAQ", ticker.MarketUS, SourceStatic},
		{"NYSE", ticker.MarketUS, SourceStatic},
		{"HKSE", ticker.MarketHK, SourceStatic},
		{"SHH", ticker.MarketCN, SourceCurrency},
		{"SHZ", ticker.MarketGlobal, SourceDefault},
		{"XETRA", ticker.MarketGlobal, SourceCurrency},
		{"TSX", ticker.MarketGlobal, SourceDefault},
		{"OTC", ticker.MarketUS, SourceCurrency},
		{UnknownExchange, ticker.MarketGlobal, SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.exchange, func(t *testing.T) {
			cl := classes[tt.exchange]
			assert.Equal(t, tt.country, cl.Country)
			assert.Equal(t, tt.source, cl.Source)
		})
	}

	assert.Equal(t, "CNY", classes["SHH"].Evidence["currency"])
	assert.Contains(t, classes["SHZ"].Evidence, "error")
	assert.NotContains(t, searcher.calls, "TSLA")
	assert.NotContains(t, searcher.calls, "X")
}

func TestClassifier_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	groups := GroupByExchange([]Instrument{inst("600519.SS", "SHH")})

	_, err := NewClassifier(&fakeSearcher{}, 1, nil).Classify(ctx, groups)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan(t *testing.T) {
	p := 1.5
	nasdaq := inst("TSLA", "NASDAQ")
	nasdaq.Price = &p
	groups := GroupByExchange([]Instrument{nasdaq, inst("600519.SS", "SHH"), inst("X", ""), inst("Y", "LSE")})
	classes := map[string]Classification{
		"NASDAQ":        {Exchange: "NASDAQ", Country: ticker.MarketUS, Source: SourceStatic},
		"SHH":           {Exchange: "SHH", Country: ticker.MarketCN, Source: SourceCurrency, Evidence: map[string]interface{}{"currency": "CNY"}},
		UnknownExchange: {Exchange: UnknownExchange, Country: ticker.MarketGlobal, Source: SourceDefault},
	}

	stocks, exchanges, summary := Plan(groups, classes)
	require.Len(t, stocks, 4)
	assert.Equal(t, 4, summary.Instruments)
	assert.Equal(t, 4, summary.Exchanges)
	assert.Equal(t, map[string]int{"US": 1, "CN": 1, "GLOBAL": 2}, summary.ByCountry)

	bySymbol := map[string]*entity.Stock{}
	for _, s := range stocks {
		bySymbol[s.Symbol] = s
	}
	assert.Equal(t, "US", bySymbol["TSLA"].Country)
	assert.Equal(t, &p, bySymbol["TSLA"].Price)
	assert.Equal(t, "NASDAQ Exchange", bySymbol["TSLA"].Exchange)
	assert.Equal(t, "CN", bySymbol["600519.SS"].Country)
	assert.Equal(t, "GLOBAL", bySymbol["X"].Country)
	assert.Empty(t, bySymbol["X"].ExchangeShortName)
	// Unclassified exchange falls back to GLOBAL.
	assert.Equal(t, "GLOBAL", bySymbol["Y"].Country)

	for _, ex := range exchanges {
		if ex.ShortName == "LSE" {
			assert.Equal(t, SourceDefault, ex.Source)
		}
	}
}

type fakeStocks struct {
	contract.StockRepository
	deleted  bool
	inserted []*entity.Stock
	batch    int
	err      error
}

func (r *fakeStocks) DeleteAll(ctx context.Context) error {
	r.deleted = true
	return nil
}

func (r *fakeStocks) CreateInBatches(ctx context.Context, stocks []*entity.Stock, batchSize int) error {
	r.inserted = stocks
	r.batch = batchSize
	return r.err
}

type fakeExchanges struct {
	contract.ExchangeRepository
	upserted []*entity.Exchange
}

func (r *fakeExchanges) Upsert(ctx context.Context, exchange *entity.Exchange) error {
	r.upserted = append(r.upserted, exchange)
	return nil
}

type fakeUoW struct {
	unitofwork.UnitOfWork
	stocks     *fakeStocks
	exchanges  *fakeExchanges
	began      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUoW) Begin(ctx context.Context) error { u.began = true; return nil }
func (u *fakeUoW) Commit() error                   { u.committed = true; return nil }
func (u *fakeUoW) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}
func (u *fakeUoW) StockRepository() contract.StockRepository       { return u.stocks }
func (u *fakeUoW) ExchangeRepository() contract.ExchangeRepository { return u.exchanges }

type fakeFactory struct{ uow *fakeUoW }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func TestLoader_Load(t *testing.T) {
	uow := &fakeUoW{stocks: &fakeStocks{}, exchanges: &fakeExchanges{}}
	groups := GroupByExchange([]Instrument{inst("TSLA", "NASDAQ"), inst("MSFT", "NASDAQ")})
	classes := map[string]Classification{"NASDAQ": {Exchange: "NASDAQ", Country: ticker.MarketUS, Source: SourceStatic}}

	summary, err := NewLoader(&fakeFactory{uow: uow}, 500, nil).Load(context.Background(), groups, classes)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Instruments)

	assert.True(t, uow.began)
	assert.True(t, uow.stocks.deleted)
	assert.Len(t, uow.stocks.inserted, 2)
	assert.Equal(t, 500, uow.stocks.batch)
	require.Len(t, uow.exchanges.upserted, 1)
	assert.Equal(t, 2, uow.exchanges.upserted[0].InstrumentCount)
	assert.True(t, uow.committed)
	assert.False(t, uow.rolledBack)
}

func TestLoader_RollsBackOnInsertFailure(t *testing.T) {
	uow := &fakeUoW{stocks: &fakeStocks{err: errors.New("duplicate key")}, exchanges: &fakeExchanges{}}
	groups := GroupByExchange([]Instrument{inst("TSLA", "NASDAQ")})

	_, err := NewLoader(&fakeFactory{uow: uow}, 0, nil).Load(context.Background(), groups, nil)
	require.Error(t, err)
	assert.Equal(t, DefaultBatchSize, uow.stocks.batch)
	assert.False(t, uow.committed)
	assert.True(t, uow.rolledBack)
	assert.Empty(t, uow.exchanges.upserted)
}

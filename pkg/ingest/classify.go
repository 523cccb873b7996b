package ingest

import (
	"context"
	"strings"
	"sync"

	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/pkg/ticker"

	"golang.org/x/sync/errgroup"
)

const (
	SourceStatic   = "static"
	SourceCurrency = "currency"
	SourceDefault  = "default"
)

var staticExchanges = map[string]ticker.Market{
	"HKSE":   ticker.MarketHK,
	"NYSE":   ticker.MarketUS,
	"NASDAQ": ticker.MarketUS,
}

var currencyMarkets = map[string]ticker.Market{
	"USD": ticker.MarketUS,
	"HKD": ticker.MarketHK,
	"CNY": ticker.MarketCN,
}

// SymbolSearcher is the part of Client the classifier needs.
type SymbolSearcher interface {
	SearchSymbol(ctx context.Context, symbol string) ([]SearchResult, error)
}

// Classification is the country assigned to one exchange and how it was
// derived.
type Classification struct {
	Exchange string
	Country  ticker.Market
	Source   string
	Evidence map[string]interface{}
}

// Classifier assigns a country to every exchange. Unmapped exchanges are
// classified by the listing currency of their first instrument, which is a
// heuristic: one sample speaks for the whole exchange.
type Classifier struct {
	search      SymbolSearcher
	concurrency int
	logger      logger.ILogger
}

func NewClassifier(search SymbolSearcher, concurrency int, log logger.ILogger) *Classifier {
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Classifier{search: search, concurrency: concurrency, logger: log}
}

// Classify returns one Classification per group. A failed sample lookup is
// logged and leaves that exchange at GLOBAL; only ctx cancellation fails
// the call.
func (c *Classifier) Classify(ctx context.Context, groups Groups) (map[string]Classification, error) {
	out := make(map[string]Classification, len(groups))
	var mu sync.Mutex
	set := func(cl Classification) {
		mu.Lock()
		out[cl.Exchange] = cl
		mu.Unlock()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, exchange := range groups.Exchanges() {
		if m, ok := staticExchanges[exchange]; ok {
			set(Classification{Exchange: exchange, Country: m, Source: SourceStatic})
			continue
		}
		instruments := groups[exchange]
		if exchange == UnknownExchange || len(instruments) == 0 {
			set(Classification{Exchange: exchange, Country: ticker.MarketGlobal, Source: SourceDefault})
			continue
		}

		g.Go(func() error {
			set(c.sample(gCtx, exchange, instruments[0].Symbol))
			return gCtx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Classifier) sample(ctx context.Context, exchange, symbol string) Classification {
	fallback := Classification{
		Exchange: exchange,
		Country:  ticker.MarketGlobal,
		Source:   SourceDefault,
		Evidence: map[string]interface{}{"symbol": symbol},
	}

	results, err := c.search.SearchSymbol(ctx, symbol)
	if err != nil {
		c.logger.Warn("ingest.classify", "Sample lookup failed", map[string]interface{}{
			"exchange": exchange,
			"symbol":   symbol,
			"error":    err.Error(),
		})
		fallback.Evidence["error"] = err.Error()
		return fallback
	}
	if len(results) == 0 {
		c.logger.Warn("ingest.classify", "No search results for exchange", map[string]interface{}{
			"exchange": exchange,
			"symbol":   symbol,
		})
		return fallback
	}

	currency := strings.ToUpper(strings.TrimSpace(results[0].Currency))
	country, ok := currencyMarkets[currency]
	if !ok {
		country = ticker.MarketGlobal
	}
	return Classification{
		Exchange: exchange,
		Country:  country,
		Source:   SourceCurrency,
		Evidence: map[string]interface{}{"symbol": symbol, "currency": currency},
	}
}

// CountryOf returns the country for an exchange short name, GLOBAL when
// the exchange was never classified.
func CountryOf(classes map[string]Classification, exchangeShortName string) ticker.Market {
	if cl, ok := classes[exchangeShortName]; ok && exchangeShortName != UnknownExchange {
		return cl.Country
	}
	return ticker.MarketGlobal
}

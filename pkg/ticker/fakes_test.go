package ticker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"stock-ticker-be/pkg/reasoning"
)

func price(v float64) *float64 { return &v }

// catalogFixture is a small slice of the real catalog.
func catalogFixture() []CatalogRecord {
	return []CatalogRecord{
		{ID: "1", Symbol: "TSLA", Name: "Tesla, Inc.", Price: price(250.1), Exchange: "NASDAQ Global Select", ExchangeShortName: "NASDAQ", Type: "stock", Country: MarketUS},
		{ID: "2", Symbol: "MSFT", Name: "Microsoft Corporation", Price: price(420.5), Exchange: "NASDAQ Global Select", ExchangeShortName: "NASDAQ", Type: "stock", Country: MarketUS},
		{ID: "3", Symbol: "BABA", Name: "Alibaba Group Holding Limited", Price: price(85.2), Exchange: "New York Stock Exchange", ExchangeShortName: "NYSE", Type: "stock", Country: MarketUS},
		{ID: "4", Symbol: "9988.HK", Name: "Alibaba Group Holding Limited", Price: price(80.3), Exchange: "HKSE", ExchangeShortName: "HKSE", Type: "stock", Country: MarketHK},
		{ID: "5", Symbol: "NVDA", Name: "NVIDIA Corporation", Price: price(130.7), Exchange: "NASDAQ Global Select", ExchangeShortName: "NASDAQ", Type: "stock", Country: MarketUS},
		{ID: "6", Symbol: "600519.SS", Name: "Kweichow Moutai Co., Ltd.", Price: price(1500), Exchange: "Shanghai", ExchangeShortName: "SHH", Type: "stock", Country: MarketCN},
	}
}

type fakeStore struct {
	records []CatalogRecord

	failExact    bool
	failFuzzy    bool
	failFullText bool
	// blockSymbol makes symbol lookups for it wait for their context.
	blockSymbol string

	mu    sync.Mutex
	calls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: catalogFixture()}
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStore) ExactSymbol(ctx context.Context, symbol string) ([]CatalogRecord, error) {
	s.record(LookupExact + ":" + symbol)
	if s.blockSymbol != "" && symbol == s.blockSymbol {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
	}
	if s.failExact {
		return nil, fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
	}
	var out []CatalogRecord
	for _, r := range s.records {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) FuzzySymbol(ctx context.Context, fragment string) ([]CatalogRecord, error) {
	s.record(LookupFuzzy + ":" + fragment)
	if s.blockSymbol != "" && fragment == s.blockSymbol {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
	}
	if s.failFuzzy {
		return nil, fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
	}
	var out []CatalogRecord
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Symbol), strings.ToLower(fragment)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) FullTextName(ctx context.Context, name string) ([]CatalogRecord, error) {
	s.record(LookupFullText + ":" + name)
	if s.failFullText {
		return nil, fmt.Errorf("%w: statement timeout", ErrStoreUnavailable)
	}
	var out []CatalogRecord
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) {
			out = append(out, r)
		}
	}
	return out, nil
}

// scriptedCapability answers each request name with its scripted replies in
// order, repeating the last one once they run out.
type scriptedCapability struct {
	replies map[string][]string
	// block makes calls with these names wait for their context.
	block map[string]bool
	hook  func(reasoning.Request)

	mu       sync.Mutex
	calls    map[string]int
	requests []reasoning.Request
}

func newScripted(replies map[string][]string) *scriptedCapability {
	return &scriptedCapability{
		replies: replies,
		block:   map[string]bool{},
		calls:   map[string]int{},
	}
}

func (s *scriptedCapability) Invoke(ctx context.Context, req reasoning.Request) (json.RawMessage, error) {
	s.mu.Lock()
	n := s.calls[req.Name]
	s.calls[req.Name]++
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.hook != nil {
		s.hook(req)
	}
	if s.block[req.Name] {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	rs := s.replies[req.Name]
	if len(rs) == 0 {
		return nil, fmt.Errorf("no reply scripted for %s", req.Name)
	}
	if n >= len(rs) {
		n = len(rs) - 1
	}
	return json.RawMessage(rs[n]), nil
}

func (s *scriptedCapability) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *scriptedCapability) Requests(name string) []reasoning.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []reasoning.Request
	for _, r := range s.requests {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

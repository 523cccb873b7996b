package ticker

import (
	"context"
	"fmt"
	"time"

	"stock-ticker-be/internal/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	LookupExact    = "exact"
	LookupFuzzy    = "fuzzy"
	LookupFullText = "fulltext"
)

// CatalogStore is the read-only catalog the resolver searches.
type CatalogStore interface {
	// ExactSymbol matches the symbol as stored, case-sensitive.
	ExactSymbol(ctx context.Context, symbol string) ([]CatalogRecord, error)
	// FuzzySymbol matches symbols containing fragment, case-insensitive.
	FuzzySymbol(ctx context.Context, fragment string) ([]CatalogRecord, error)
	// FullTextName runs a full-text search over company names.
	FullTextName(ctx context.Context, name string) ([]CatalogRecord, error)
}

// Resolution is the answer of one resolve call plus the lookups that failed
// along the way without failing the call.
type Resolution struct {
	Answer   []CatalogRecord
	Degraded []CandidateFailure
}

type Resolver struct {
	store   CatalogStore
	timeout time.Duration
	logger  logger.ILogger
}

func NewResolver(store CatalogStore, timeout time.Duration, log logger.ILogger) *Resolver {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Resolver{store: store, timeout: timeout, logger: log}
}

type candidateOutcome struct {
	record   *CatalogRecord
	failures []CandidateFailure
	// attempted and failed count store calls made for the candidate.
	attempted int
	failed    int
}

// Resolve looks every candidate up concurrently and returns at most one
// record per candidate, in candidate order. It fails only when every
// candidate that reached the store saw all of its lookups fail.
func (r *Resolver) Resolve(ctx context.Context, candidates []Candidate, market Market) (*Resolution, error) {
	outcomes := make([]candidateOutcome, len(candidates))

	var g errgroup.Group
	for i, c := range candidates {
		g.Go(func() error {
			outcomes[i] = r.resolveOne(ctx, c, market)
			return nil
		})
	}
	_ = g.Wait()

	res := &Resolution{Answer: []CatalogRecord{}}
	reached, dead := 0, 0
	var lastFailure CandidateFailure
	for _, o := range outcomes {
		if o.record != nil {
			res.Answer = append(res.Answer, *o.record)
		}
		res.Degraded = append(res.Degraded, o.failures...)
		if o.attempted > 0 {
			reached++
			if o.failed == o.attempted {
				dead++
				lastFailure = o.failures[len(o.failures)-1]
			}
		}
	}

	if reached > 0 && dead == reached {
		return res, fmt.Errorf("%w: %d of %d candidates failed every lookup, last: %s",
			ErrStoreUnavailable, dead, reached, lastFailure.Error)
	}
	return res, nil
}

func (r *Resolver) resolveOne(ctx context.Context, c Candidate, market Market) candidateOutcome {
	var out candidateOutcome

	if c.Ticker != "" {
		exact, err := r.lookup(ctx, LookupExact, c.Ticker, r.store.ExactSymbol)
		out.note(c, LookupExact, err)
		if err == nil && len(exact) > 0 {
			rec, _ := Rank(exact, market)
			out.record = &rec
			return out
		}
	}

	var fuzzy, fullText []CatalogRecord
	var fuzzyErr, fullTextErr error
	var g errgroup.Group
	if c.Ticker != "" {
		g.Go(func() error {
			fuzzy, fuzzyErr = r.lookup(ctx, LookupFuzzy, c.Ticker, r.store.FuzzySymbol)
			return nil
		})
	}
	if c.Name != "" {
		g.Go(func() error {
			fullText, fullTextErr = r.lookup(ctx, LookupFullText, c.Name, r.store.FullTextName)
			return nil
		})
	}
	_ = g.Wait()

	if c.Ticker != "" {
		out.note(c, LookupFuzzy, fuzzyErr)
	}
	if c.Name != "" {
		out.note(c, LookupFullText, fullTextErr)
	}

	for _, f := range out.failures {
		r.logger.Warn("ticker.resolver", "Lookup failed", map[string]interface{}{
			"candidate": c.String(),
			"lookup":    f.Lookup,
			"error":     f.Error,
		})
	}

	if rec, ok := Rank(merge(fuzzy, fullText), market); ok {
		out.record = &rec
	}
	return out
}

func (o *candidateOutcome) note(c Candidate, lookup string, err error) {
	o.attempted++
	if err == nil {
		return
	}
	o.failed++
	o.failures = append(o.failures, CandidateFailure{Candidate: c, Lookup: lookup, Error: err.Error()})
}

func (r *Resolver) lookup(
	ctx context.Context,
	kind, key string,
	fn func(context.Context, string) ([]CatalogRecord, error),
) ([]CatalogRecord, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	records, err := fn(ctx, key)
	recordLookup(kind, len(records), err)
	if err != nil {
		return nil, fmt.Errorf("%s lookup %q: %w", kind, key, err)
	}
	return records, nil
}

package specification

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// BySymbol matches the symbol exactly as stored
type BySymbol struct {
	Symbol string
}

func (s BySymbol) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("symbol = ?", s.Symbol)
}

// SymbolContains is a case-insensitive substring match on symbol
type SymbolContains struct {
	Fragment string
}

func (s SymbolContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(s.Fragment) + "%"
	return db.Where("symbol ILIKE ?", pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var textSearchConfig = regexp.MustCompile(`^[a-z_]+$`)

// NameTextSearch runs a websearch-style full-text query over name.
// Config is a Postgres text search configuration ("english", "simple").
type NameTextSearch struct {
	Config string
	Query  string
}

func (s NameTextSearch) Apply(db *gorm.DB) *gorm.DB {
	cfg := s.Config
	if !textSearchConfig.MatchString(cfg) {
		cfg = "simple"
	}
	// The config is inlined so the expression matches the GIN index.
	return db.Where(
		fmt.Sprintf("to_tsvector('%s', name) @@ websearch_to_tsquery('%s', ?)", cfg, cfg),
		s.Query,
	)
}

type ByCountry struct {
	Country string
}

func (s ByCountry) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("country = ?", s.Country)
}

type ByExchangeShortName struct {
	ShortName string
}

func (s ByExchangeShortName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("exchange_short_name = ?", s.ShortName)
}

type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	if s.N <= 0 {
		return db
	}
	return db.Limit(s.N)
}

// OrderByPriceDesc puts unpriced rows last
type OrderByPriceDesc struct{}

func (s OrderByPriceDesc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("price DESC NULLS LAST")
}

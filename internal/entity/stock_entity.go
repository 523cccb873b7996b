// FILE: internal/entity/stock_entity.go
// Domain entities for the stock catalog
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Stock is one catalog row
type Stock struct {
	Id                uuid.UUID
	Symbol            string
	Name              string
	Price             *float64 // nil when the feed had no quote
	Exchange          string
	ExchangeShortName string
	Type              string
	Country           string // US, HK, CN, GLOBAL
	CreatedAt         time.Time
}

// Exchange is the country classification of one exchange
type Exchange struct {
	ShortName       string
	Country         string
	Source          string                 // static, currency, default
	Evidence        map[string]interface{} // e.g. sampled symbol and currency
	InstrumentCount int
	UpdatedAt       time.Time
}

// FILE: internal/model/stock_model.go
// GORM model for the stock catalog table
package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock is one tradable instrument. Search indexes on symbol and name are
// created by cmd/migrate.
type Stock struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Symbol            string    `gorm:"type:varchar(64);not null;index"`
	Name              string    `gorm:"type:text"`
	Price             *float64  `gorm:"type:double precision"`
	Exchange          string    `gorm:"type:varchar(255)"`
	ExchangeShortName string    `gorm:"type:varchar(64);index"`
	Type              string    `gorm:"type:varchar(32)"` // stock, etf, trust, fund
	Country           string    `gorm:"type:varchar(16);not null;default:'GLOBAL';index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (Stock) TableName() string {
	return "stock_list"
}

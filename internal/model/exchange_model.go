// FILE: internal/model/exchange_model.go
// GORM model for exchange -> country classification
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Exchange records how the ingestion job classified an exchange.
type Exchange struct {
	ShortName       string         `gorm:"type:varchar(64);primaryKey"`
	Country         string         `gorm:"type:varchar(16);not null"`
	Source          string         `gorm:"type:varchar(16);not null"` // static, currency, default
	Evidence        datatypes.JSON `gorm:"type:jsonb" json:"evidence,omitempty"`
	InstrumentCount int            `gorm:"default:0"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (Exchange) TableName() string {
	return "exchanges"
}

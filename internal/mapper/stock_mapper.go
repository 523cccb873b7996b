// FILE: internal/mapper/stock_mapper.go
// Mappers for Stock and Exchange entity <-> model conversion
package mapper

import (
	"encoding/json"

	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/model"

	"gorm.io/datatypes"
)

type StockMapper struct{}

func NewStockMapper() *StockMapper {
	return &StockMapper{}
}

func (m *StockMapper) ToEntity(model *model.Stock) *entity.Stock {
	if model == nil {
		return nil
	}
	return &entity.Stock{
		Id:                model.Id,
		Symbol:            model.Symbol,
		Name:              model.Name,
		Price:             model.Price,
		Exchange:          model.Exchange,
		ExchangeShortName: model.ExchangeShortName,
		Type:              model.Type,
		Country:           model.Country,
		CreatedAt:         model.CreatedAt,
	}
}

func (m *StockMapper) ToModel(entity *entity.Stock) *model.Stock {
	if entity == nil {
		return nil
	}
	return &model.Stock{
		Id:                entity.Id,
		Symbol:            entity.Symbol,
		Name:              entity.Name,
		Price:             entity.Price,
		Exchange:          entity.Exchange,
		ExchangeShortName: entity.ExchangeShortName,
		Type:              entity.Type,
		Country:           entity.Country,
		CreatedAt:         entity.CreatedAt,
	}
}

func (m *StockMapper) ToEntities(models []*model.Stock) []*entity.Stock {
	entities := make([]*entity.Stock, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

func (m *StockMapper) ToModels(entities []*entity.Stock) []*model.Stock {
	models := make([]*model.Stock, 0, len(entities))
	for _, e := range entities {
		models = append(models, m.ToModel(e))
	}
	return models
}

type ExchangeMapper struct{}

func NewExchangeMapper() *ExchangeMapper {
	return &ExchangeMapper{}
}

func (m *ExchangeMapper) ToEntity(model *model.Exchange) *entity.Exchange {
	if model == nil {
		return nil
	}
	var evidence map[string]interface{}
	if len(model.Evidence) > 0 {
		_ = json.Unmarshal(model.Evidence, &evidence)
	}
	return &entity.Exchange{
		ShortName:       model.ShortName,
		Country:         model.Country,
		Source:          model.Source,
		Evidence:        evidence,
		InstrumentCount: model.InstrumentCount,
		UpdatedAt:       model.UpdatedAt,
	}
}

func (m *ExchangeMapper) ToModel(entity *entity.Exchange) *model.Exchange {
	if entity == nil {
		return nil
	}
	var evidence datatypes.JSON
	if entity.Evidence != nil {
		if raw, err := json.Marshal(entity.Evidence); err == nil {
			evidence = datatypes.JSON(raw)
		}
	}
	return &model.Exchange{
		ShortName:       entity.ShortName,
		Country:         entity.Country,
		Source:          entity.Source,
		Evidence:        evidence,
		InstrumentCount: entity.InstrumentCount,
		UpdatedAt:       entity.UpdatedAt,
	}
}

func (m *ExchangeMapper) ToEntities(models []*model.Exchange) []*entity.Exchange {
	entities := make([]*entity.Exchange, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

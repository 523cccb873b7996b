// FILE: internal/repository/implementation/stock_repository_impl.go
// Implementation of StockRepository and ExchangeRepository
package implementation

import (
	"context"
	"errors"

	"stock-ticker-be/internal/entity"
	"stock-ticker-be/internal/mapper"
	"stock-ticker-be/internal/model"
	"stock-ticker-be/internal/repository/contract"
	"stock-ticker-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

type StockRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StockMapper
}

func NewStockRepository(db *gorm.DB) contract.StockRepository {
	return &StockRepositoryImpl{
		db:     db,
		mapper: mapper.NewStockMapper(),
	}
}

// FindAll keeps the order given by specs; without an OrderBy spec rows come
// back in primary key order so repeated searches agree.
func (r *StockRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Stock, error) {
	var models []*model.Stock
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *StockRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Stock{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StockRepositoryImpl) CreateInBatches(ctx context.Context, stocks []*entity.Stock, batchSize int) error {
	if len(stocks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(stocks)
	return r.db.WithContext(ctx).CreateInBatches(models, batchSize).Error
}

func (r *StockRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Stock{}).Error
}

type ExchangeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExchangeMapper
}

func NewExchangeRepository(db *gorm.DB) contract.ExchangeRepository {
	return &ExchangeRepositoryImpl{
		db:     db,
		mapper: mapper.NewExchangeMapper(),
	}
}

func (r *ExchangeRepositoryImpl) Upsert(ctx context.Context, exchange *entity.Exchange) error {
	m := r.mapper.ToModel(exchange)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "short_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"country", "source", "evidence", "instrument_count", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*exchange = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExchangeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exchange, error) {
	var m model.Exchange
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExchangeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error) {
	var models []*model.Exchange
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("short_name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

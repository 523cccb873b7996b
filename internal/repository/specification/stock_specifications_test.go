package specification

import (
	"testing"

	"stock-ticker-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=ticker dbname=ticker sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func stockSQL(t *testing.T, specs ...Specification) string {
	db := dryRunDB(t)
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(&model.Stock{})
		for _, s := range specs {
			tx = s.Apply(tx)
		}
		var out []model.Stock
		return tx.Find(&out)
	})
}

func TestStockSpecifications(t *testing.T) {
	tests := []struct {
		name  string
		specs []Specification
		want  []string
	}{
		{
			name:  "exact symbol",
			specs: []Specification{BySymbol{Symbol: "TSLA"}},
			want:  []string{`symbol = 'TSLA'`},
		},
		{
			name:  "symbol contains",
			specs: []Specification{SymbolContains{Fragment: "tsl"}},
			want:  []string{`symbol ILIKE '%tsl%'`},
		},
		{
			name:  "symbol contains escapes wildcards",
			specs: []Specification{SymbolContains{Fragment: "BR_K"}},
			want:  []string{`symbol ILIKE '%BR\_K%'`},
		},
		{
			name:  "full text",
			specs: []Specification{NameTextSearch{Config: "english", Query: "Kweichow Moutai"}},
			want:  []string{`to_tsvector('english', name) @@ websearch_to_tsquery('english', 'Kweichow Moutai')`},
		},
		{
			name:  "full text rejects odd config",
			specs: []Specification{NameTextSearch{Config: "english'); DROP TABLE x; --", Query: "a"}},
			want:  []string{`to_tsvector('simple', name)`},
		},
		{
			name:  "limit and order",
			specs: []Specification{ByCountry{Country: "US"}, OrderByPriceDesc{}, Limit{N: 50}},
			want:  []string{`country = 'US'`, `ORDER BY price DESC NULLS LAST`, `LIMIT 50`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := stockSQL(t, tt.specs...)
			assert.Contains(t, sql, `"stock_list"`)
			for _, w := range tt.want {
				assert.Contains(t, sql, w)
			}
		})
	}
}

func TestLimitZeroIsUnbounded(t *testing.T) {
	sql := stockSQL(t, Limit{N: 0})
	assert.NotContains(t, sql, "LIMIT")
}

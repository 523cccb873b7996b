package catalog

import (
	"context"
	"os"
	"strings"
	"testing"

	"stock-ticker-be/internal/model"
	"stock-ticker-be/internal/repository/unitofwork"
	"stock-ticker-be/pkg/database"
	"stock-ticker-be/pkg/ticker"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Postgres(t *testing.T) {
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(&model.Stock{}, &model.Exchange{}))

	// Unique symbols so the test can share a database with real data.
	tag := strings.ToUpper(strings.ReplaceAll(uuid.NewString()[:8], "-", ""))
	us, hk := 10.0, 20.0
	rows := []model.Stock{
		{Symbol: "IT" + tag, Name: "Integrationtest" + tag + " Holdings", Price: &us, ExchangeShortName: "NYSE", Country: "US"},
		{Symbol: "IT" + tag + ".HK", Name: "Integrationtest" + tag + " Holdings", Price: &hk, ExchangeShortName: "HKSE", Country: "HK"},
	}
	require.NoError(t, db.Create(&rows).Error)
	t.Cleanup(func() { db.Where("symbol LIKE ?", "IT"+tag+"%").Delete(&model.Stock{}) })

	store := NewStore(unitofwork.NewRepositoryFactory(db), "english", 10)
	ctx := context.Background()

	exact, err := store.ExactSymbol(ctx, "IT"+tag)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, ticker.MarketUS, exact[0].Country)

	lower, err := store.ExactSymbol(ctx, strings.ToLower("IT"+tag))
	require.NoError(t, err)
	assert.Empty(t, lower)

	fuzzy, err := store.FuzzySymbol(ctx, strings.ToLower(tag))
	require.NoError(t, err)
	assert.Len(t, fuzzy, 2)

	full, err := store.FullTextName(ctx, "integrationtest"+strings.ToLower(tag))
	require.NoError(t, err)
	require.Len(t, full, 2)

	best, ok := ticker.Rank(full, ticker.MarketHK)
	require.True(t, ok)
	assert.Equal(t, "IT"+tag+".HK", best.Symbol)
}

package main

import (
	"fmt"
	"log"
	"regexp"

	"stock-ticker-be/internal/config"
	"stock-ticker-be/internal/model"
	"stock-ticker-be/pkg/database"
)

var searchConfigPattern = regexp.MustCompile(`^[a-z_]+$`)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer database.Close(db)

	// The name index must be built with the same text search configuration
	// the catalog queries with, or postgres will not use it.
	searchConfig := cfg.Database.SearchConfig
	if !searchConfigPattern.MatchString(searchConfig) {
		log.Fatalf("Error: DB_SEARCH_CONFIG %q is not a valid text search configuration", searchConfig)
	}

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS pg_trgm;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate
	log.Println("Step 2: Running AutoMigrate...")

	if err := db.AutoMigrate(&model.Stock{}, &model.Exchange{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: search indexes
	log.Println("Step 3: Creating search indexes...")

	postMigrationSQL := []string{
		// ILIKE '%fragment%' on symbol
		`CREATE INDEX IF NOT EXISTS idx_stock_list_symbol_trgm ON stock_list USING gin (symbol gin_trgm_ops);`,

		// to_tsvector(name) @@ websearch_to_tsquery(...)
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_stock_list_name_fts_%[1]s ON stock_list USING gin (to_tsvector('%[1]s', name));`, searchConfig),
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates the catalogue tables and indexes.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the schema DDL. All columns are defined in
// the initial CREATE TABLE statements; there is no migration machinery.
func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_category_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_ingredient_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_recipe_id START 1`,

		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_category_id'),
			name TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS ingredients (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_ingredient_id'),
			name TEXT NOT NULL UNIQUE,
			always_available BOOLEAN NOT NULL DEFAULT false
		)`,

		`CREATE TABLE IF NOT EXISTS recipes (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_recipe_id'),
			name TEXT NOT NULL,
			cooking_time INTEGER NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			image TEXT
		)`,

		// Category membership. One row per (recipe, category).
		`CREATE TABLE IF NOT EXISTS recipe_categories (
			recipe_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			PRIMARY KEY (recipe_id, category_id)
		)`,

		// Ingredient lines. count_text is free text ("500 гр."); position
		// preserves the authored order of the list.
		`CREATE TABLE IF NOT EXISTS recipe_ingredients (
			recipe_id BIGINT NOT NULL,
			ingredient_id BIGINT NOT NULL,
			count_text TEXT NOT NULL DEFAULT '',
			optional BOOLEAN NOT NULL DEFAULT false,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (recipe_id, ingredient_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recipe_categories_category
			ON recipe_categories(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient
			ON recipe_ingredients(ingredient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name)`,
	}
}

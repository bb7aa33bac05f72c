package db

import (
	"database/sql"
)

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS recipes (
    id               SERIAL PRIMARY KEY,
    title            TEXT NOT NULL,
    source_url       TEXT NOT NULL UNIQUE,
    description      TEXT NOT NULL DEFAULT '',
    image_url        TEXT NOT NULL DEFAULT '',
    yield            TEXT NOT NULL DEFAULT '',
    prep_minutes     INTEGER NOT NULL DEFAULT 0,
    cook_minutes     INTEGER NOT NULL DEFAULT 0,
    total_minutes    INTEGER NOT NULL DEFAULT 0,
    ingredients      JSONB NOT NULL DEFAULT '[]',
    instructions     JSONB NOT NULL DEFAULT '[]',
    source_dead      BOOLEAN NOT NULL DEFAULT FALSE,
    last_verified_at TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	indexes := []string{
		// ORDER BY created_at DESC (list and search queries)
		`CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at DESC)`,
		// Dead-link exclusion in default search
		`CREATE INDEX IF NOT EXISTS idx_recipes_source_dead ON recipes(source_dead) WHERE source_dead = FALSE`,
		// Verification worker scans by last check time
		`CREATE INDEX IF NOT EXISTS idx_recipes_last_verified_at ON recipes(last_verified_at ASC NULLS FIRST)`,
	}

	// pg_trgm speeds up ILIKE title search; ignore errors when the
	// extension is unavailable or the role lacks privileges
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_recipes_title_gin ON recipes USING gin(title gin_trgm_ops)`)

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pgvector extension for similarity search; ignore errors when
	// unavailable
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)

	// Note: recipe_id is INTEGER to match recipes.id (SERIAL = INTEGER)
	// Note: vector(1536) is fixed size for OpenAI text-embedding-3-small model
	//       The dimension column stores metadata for validation purposes
	//       If multi-dimension support is needed, consider separate tables per dimension
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS recipe_embeddings (
    id              SERIAL PRIMARY KEY,
    recipe_id       INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
    provider        VARCHAR(50) NOT NULL,
    model           VARCHAR(100) NOT NULL,
    dimension       INT NOT NULL,
    embedding       vector(1536) NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(recipe_id, provider, model)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_recipe_embeddings_recipe_id ON recipe_embeddings(recipe_id)`); err != nil {
		return err
	}

	// IVFFlat index for cosine similarity search; ignore errors when the
	// pgvector extension is missing. lists=100 suits <1M rows.
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_recipe_embeddings_vector
    ON recipe_embeddings USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)

	return nil
}

// MigrateDown rolls back the embedding feature schema.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_recipe_embeddings_vector`,
		`DROP INDEX IF EXISTS idx_recipe_embeddings_recipe_id`,
		`DROP TABLE IF EXISTS recipe_embeddings CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Note: We do NOT drop the vector extension as it may be used by other tables
	// Note: We do NOT drop the recipes table as it is a core table

	return nil
}

package database

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "001_init.up.sql", files[0])
	for i, f := range files {
		assert.Equal(t, i+1, extractVersion(f), f)
	}
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, 12, extractVersion("012_add_index.up.sql"))
	assert.Equal(t, 0, extractVersion("no_version.up.sql"))
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "kanso", Password: "pw", Name: "kanso_db"}
	assert.Equal(t, "postgres://kanso:pw@db:5432/kanso_db?sslmode=disable", cfg.DSN())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestMigrate_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	db, err := Connect(Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "kanso_user"),
		Password: getEnv("DB_PASSWORD", "secret"),
		Name:     getEnv("DB_NAME", "kanso_db"),
	})
	if err != nil {
		t.Skipf("Skipping migration integration test: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	_, err = Migrate(ctx, db)
	require.NoError(t, err)

	applied, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, applied, "migrations are applied once")

	var tables int
	require.NoError(t, db.GetContext(ctx, &tables, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_name IN ('habits', 'tracking_events', 'schema_migrations')`))
	assert.Equal(t, 3, tables)
}

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/database"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects to the integration database, migrates it and empties
// it. The test is skipped when no database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	db, err := database.Connect(database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "kanso_user"),
		Password: getEnv("DB_PASSWORD", "secret"),
		Name:     getEnv("DB_NAME", "kanso_db"),
	})
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err, "Failed to migrate test database")

	cleanup(t, db)
	t.Cleanup(func() {
		cleanup(t, db)
		db.Close()
	})
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE tracking_events, habits CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

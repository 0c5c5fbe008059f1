package helpers

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB creates a test database connection. Tests calling this skip
// when no database is configured, so the unit suite stays runnable anywhere.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestSession removes everything a test session created. Most tables
// cascade from user_sessions; crisis_logs keeps no foreign key and is wiped
// explicitly.
func CleanupTestSession(t *testing.T, pool *pgxpool.Pool, sessionID string) {
	ctx := context.Background()

	if _, err := pool.Exec(ctx, "DELETE FROM crisis_logs WHERE session_id = $1", sessionID); err != nil {
		t.Logf("Warning: failed to clean crisis logs: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM user_sessions WHERE session_id = $1", sessionID); err != nil {
		t.Logf("Warning: failed to clean test session: %v", err)
	}

	pool.Close()
}

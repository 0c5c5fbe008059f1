package workers

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// retentionDays is how long an anonymous session may sit idle before its data
// is purged. Cascades remove the session's moods, journals, plans and chats;
// crisis logs are kept for the gatekeeper view.
const retentionDays = 90

// StartCleanupWorker starts a background routine that purges idle sessions
// once an hour.
func StartCleanupWorker(db *pgxpool.Pool) {
	ticker := time.NewTicker(1 * time.Hour)

	go func() {
		for range ticker.C {
			cleanupIdleSessions(db)
		}
	}()
}

func cleanupIdleSessions(db *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := db.Exec(ctx, `
		DELETE FROM user_sessions
		WHERE last_activity < NOW() - make_interval(days => $1)
	`, retentionDays)
	if err != nil {
		log.Printf("Error cleaning up idle sessions: %v", err)
		return
	}

	if n := result.RowsAffected(); n > 0 {
		log.Printf("Cleaned up %d idle sessions", n)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/journal"
	"mannMitraAPI/internal/streak"
)

type JournalService struct {
	db *pgxpool.Pool
}

func NewJournalService(db *pgxpool.Pool) *JournalService {
	return &JournalService{db: db}
}

const journalColumns = `id, session_id, title, content, mood_before, mood_after, tags, is_encrypted, encryption_key, created_at, updated_at`

// CreateEntry writes a journal entry, encrypting content and title with a
// fresh per-entry key unless the caller opted out.
func (s *JournalService) CreateEntry(ctx context.Context, sessionID string, req *journal.CreateEntryRequest) (*journal.View, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalidArgument)
	}
	if err := validateMood(req.MoodBefore); err != nil {
		return nil, err
	}
	if err := validateMood(req.MoodAfter); err != nil {
		return nil, err
	}

	encrypt := req.Encrypt == nil || *req.Encrypt

	content := req.Content
	title := req.Title
	var encryptionKey *string

	if encrypt {
		key, err := journal.GenerateKey()
		if err != nil {
			return nil, err
		}
		encryptionKey = &key

		content, err = journal.EncryptField(req.Content, key)
		if err != nil {
			return nil, err
		}
		if req.Title != nil {
			encTitle, err := journal.EncryptField(*req.Title, key)
			if err != nil {
				return nil, err
			}
			title = &encTitle
		}
	}

	query := `
	INSERT INTO journal_entries (id, session_id, title, content, mood_before, mood_after, tags, is_encrypted, encryption_key, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	RETURNING ` + journalColumns

	entry := &journal.Entry{}
	err := scanJournalRow(s.db.QueryRow(ctx, query,
		uuid.New(), sessionID, title, content, req.MoodBefore, req.MoodAfter, req.Tags, encrypt, encryptionKey,
	), entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return s.decryptOrFallback(entry), nil
}

// GetEntries lists entries newest-first as transient decrypted views.
func (s *JournalService) GetEntries(ctx context.Context, sessionID string, limit, offset int) ([]*journal.View, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE session_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

	return s.queryViews(ctx, query, sessionID, limit, offset)
}

func (s *JournalService) GetEntry(ctx context.Context, entryID uuid.UUID, sessionID string) (*journal.View, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE id = $1 AND session_id = $2`

	entry := &journal.Entry{}
	err := scanJournalRow(s.db.QueryRow(ctx, query, entryID, sessionID), entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal entry: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}

	return s.decryptOrFallback(entry), nil
}

// UpdateEntry merges the request into the decrypted entry and re-encrypts
// under a fresh key when the entry was encrypted. An entry whose key no
// longer opens it cannot be merged and the update is rejected.
func (s *JournalService) UpdateEntry(ctx context.Context, entryID uuid.UUID, sessionID string, req *journal.UpdateEntryRequest) (*journal.View, error) {
	if err := validateMood(req.MoodBefore); err != nil {
		return nil, err
	}
	if err := validateMood(req.MoodAfter); err != nil {
		return nil, err
	}

	entry := &journal.Entry{}
	err := scanJournalRow(s.db.QueryRow(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1 AND session_id = $2`, entryID, sessionID), entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal entry: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load journal entry: %w", err)
	}

	view, decErr := journal.Decrypt(entry)
	if decErr != nil {
		log.Printf("journal entry %s undecryptable, rejecting update: %v", entryID, decErr)
		return nil, decErr
	}

	content := view.Content
	title := view.Title
	if req.Content != nil {
		content = *req.Content
	}
	if req.Title != nil {
		title = req.Title
	}
	moodBefore := entry.MoodBefore
	moodAfter := entry.MoodAfter
	if req.MoodBefore != nil {
		moodBefore = req.MoodBefore
	}
	if req.MoodAfter != nil {
		moodAfter = req.MoodAfter
	}
	tags := entry.Tags
	if req.Tags != nil {
		tags = req.Tags
	}

	storedContent := content
	storedTitle := title
	encryptionKey := entry.EncryptionKey

	if entry.IsEncrypted {
		key, err := journal.GenerateKey()
		if err != nil {
			return nil, err
		}
		encryptionKey = &key

		storedContent, err = journal.EncryptField(content, key)
		if err != nil {
			return nil, err
		}
		if title != nil {
			encTitle, err := journal.EncryptField(*title, key)
			if err != nil {
				return nil, err
			}
			storedTitle = &encTitle
		}
	}

	query := `
	UPDATE journal_entries
	SET title = $3, content = $4, mood_before = $5, mood_after = $6, tags = $7, encryption_key = $8, updated_at = NOW()
	WHERE id = $1 AND session_id = $2
	RETURNING ` + journalColumns

	updated := &journal.Entry{}
	err = scanJournalRow(s.db.QueryRow(ctx, query, entryID, sessionID, storedTitle, storedContent, moodBefore, moodAfter, tags, encryptionKey), updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	return s.decryptOrFallback(updated), nil
}

func (s *JournalService) DeleteEntry(ctx context.Context, entryID uuid.UUID, sessionID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1 AND session_id = $2`, entryID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("journal entry: %w", apperr.ErrNotFound)
	}
	return nil
}

// SearchEntries matches query text against unencrypted titles and content.
// Encrypted entries are not searchable by design.
func (s *JournalService) SearchEntries(ctx context.Context, sessionID, searchQuery string) ([]*journal.View, error) {
	query := `SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE session_id = $1 AND is_encrypted = false
	  AND (content ILIKE '%' || $2 || '%' OR title ILIKE '%' || $2 || '%')
	ORDER BY created_at DESC`

	return s.queryViews(ctx, query, sessionID, searchQuery)
}

func (s *JournalService) GetEntriesByTag(ctx context.Context, sessionID, tag string) ([]*journal.View, error) {
	query := `SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE session_id = $1 AND $2 = ANY(tags)
	ORDER BY created_at DESC`

	return s.queryViews(ctx, query, sessionID, tag)
}

// GetEntriesByMoodRange filters on the post-writing mood. Either bound may
// be nil to leave that side open.
func (s *JournalService) GetEntriesByMoodRange(ctx context.Context, sessionID string, moodMin, moodMax *int) ([]*journal.View, error) {
	if err := validateMood(moodMin); err != nil {
		return nil, err
	}
	if err := validateMood(moodMax); err != nil {
		return nil, err
	}

	query := `SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE session_id = $1
	  AND ($2::int IS NULL OR mood_after >= $2)
	  AND ($3::int IS NULL OR mood_after <= $3)
	ORDER BY created_at DESC`

	return s.queryViews(ctx, query, sessionID, moodMin, moodMax)
}

func (s *JournalService) GetEntriesByDateRange(ctx context.Context, sessionID string, start, end time.Time) ([]*journal.View, error) {
	query := `SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE session_id = $1 AND created_at >= $2 AND created_at <= $3
	ORDER BY created_at DESC`

	return s.queryViews(ctx, query, sessionID, start, end)
}

const exportEntryLimit = 1000

// ExportEntries bundles a session's decrypted entries into a portable dump.
// When both bounds are set the dump is limited to that date range, otherwise
// it covers the most recent entries up to the export limit.
func (s *JournalService) ExportEntries(ctx context.Context, sessionID string, start, end *time.Time) (*journal.Export, error) {
	var entries []*journal.View
	var err error
	if start != nil && end != nil {
		entries, err = s.GetEntriesByDateRange(ctx, sessionID, *start, *end)
	} else {
		entries, err = s.GetEntries(ctx, sessionID, exportEntryLimit, 0)
	}
	if err != nil {
		return nil, err
	}

	return &journal.Export{
		ExportDate:   time.Now().UTC(),
		SessionID:    sessionID,
		TotalEntries: len(entries),
		Entries:      entries,
	}, nil
}

// GetStats aggregates journaling activity over the trailing window.
func (s *JournalService) GetStats(ctx context.Context, sessionID string, days int) (*journal.Stats, error) {
	if days <= 0 {
		days = 30
	}

	query := `SELECT ` + journalColumns + `
	FROM journal_entries
	WHERE session_id = $1 AND created_at >= NOW() - make_interval(days => $2)`

	rows, err := s.db.Query(ctx, query, sessionID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal stats: %w", err)
	}
	defer rows.Close()

	stats := &journal.Stats{PeriodDays: days}
	tagCounts := map[string]int{}
	var sumBefore, sumAfter int

	for rows.Next() {
		entry := &journal.Entry{}
		if err := scanJournalRow(rows, entry); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		stats.TotalEntries++
		for _, tag := range entry.Tags {
			tagCounts[tag]++
		}
		if entry.MoodBefore != nil && entry.MoodAfter != nil {
			stats.EntriesWithMood++
			sumBefore += *entry.MoodBefore
			sumAfter += *entry.MoodAfter
			if *entry.MoodAfter > *entry.MoodBefore {
				stats.MoodImprovements++
			} else if *entry.MoodAfter < *entry.MoodBefore {
				stats.MoodDeclines++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.EntriesWithMood > 0 {
		stats.AverageMoodBefore = float64(sumBefore) / float64(stats.EntriesWithMood)
		stats.AverageMoodAfter = float64(sumAfter) / float64(stats.EntriesWithMood)
	}

	for tag, count := range tagCounts {
		stats.TopTags = append(stats.TopTags, journal.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > 10 {
		stats.TopTags = stats.TopTags[:10]
	}
	stats.UniqueTags = len(tagCounts)

	return stats, nil
}

func (s *JournalService) GetWritingStreak(ctx context.Context, sessionID string) (int, error) {
	query := `
	SELECT created_at FROM journal_entries
	WHERE session_id = $1 AND created_at >= NOW() - make_interval(days => $2)
	`

	rows, err := s.db.Query(ctx, query, sessionID, streakLookbackDays)
	if err != nil {
		return 0, fmt.Errorf("failed to load journal dates: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return 0, fmt.Errorf("failed to scan journal date: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return streak.Current(streak.DaySet(times), time.Now()), nil
}

func (s *JournalService) queryViews(ctx context.Context, query string, args ...any) ([]*journal.View, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	views := []*journal.View{}
	for rows.Next() {
		entry := &journal.Entry{}
		if err := scanJournalRow(rows, entry); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		views = append(views, s.decryptOrFallback(entry))
	}

	return views, rows.Err()
}

// decryptOrFallback converts to the transient view; decryption failures are
// logged and the ciphertext view is returned so a single corrupted entry can
// never break a list response.
func (s *JournalService) decryptOrFallback(entry *journal.Entry) *journal.View {
	view, err := journal.Decrypt(entry)
	if err != nil {
		log.Printf("journal entry %s failed to decrypt: %v", entry.ID, err)
	}
	return view
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalRow(row rowScanner, entry *journal.Entry) error {
	return row.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Title,
		&entry.Content,
		&entry.MoodBefore,
		&entry.MoodAfter,
		&entry.Tags,
		&entry.IsEncrypted,
		&entry.EncryptionKey,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
}

func validateMood(mood *int) error {
	if mood != nil && (*mood < 1 || *mood > 10) {
		return fmt.Errorf("%w: mood must be between 1 and 10", apperr.ErrInvalidArgument)
	}
	return nil
}

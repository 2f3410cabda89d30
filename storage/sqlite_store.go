package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"daybook/block"
	"daybook/suggest"
)

const dayLayout = "2006-01-02"

// SQLiteStore owns the session-spanning state the reconciliation engine
// deliberately does not: user-created blocks, the per-day exclusion set,
// and the suggestion history.
type SQLiteStore struct {
	db *sql.DB
}

var ErrBlockNotFound = errors.New("block not found")

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS blocks (
	id TEXT PRIMARY KEY,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	duration_seconds INTEGER NOT NULL CHECK(duration_seconds >= 0),
	title TEXT NOT NULL,
	source_app TEXT NOT NULL,
	selected_ticket TEXT NOT NULL DEFAULT '',
	origin TEXT NOT NULL,
	aggregation TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_blocks_day ON blocks(day);

CREATE TABLE IF NOT EXISTS exclusions (
	day TEXT NOT NULL,
	block_id TEXT NOT NULL,
	PRIMARY KEY (day, block_id)
);

CREATE TABLE IF NOT EXISTS ticket_mappings (
	project TEXT PRIMARY KEY,
	ticket_key TEXT NOT NULL,
	ticket_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS activity_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_app TEXT NOT NULL,
	title TEXT NOT NULL,
	ticket_key TEXT NOT NULL,
	ticket_name TEXT NOT NULL DEFAULT '',
	used_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_ticket ON activity_history(ticket_key);

CREATE TABLE IF NOT EXISTS rejections (
	source_app TEXT NOT NULL,
	title_prefix TEXT NOT NULL,
	ticket_key TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source_app, title_prefix, ticket_key)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveBlock upserts one user-created or edited block for a day.
func (s *SQLiteStore) SaveBlock(day time.Time, b block.ActivityBlock) error {
	aggregation := ""
	if b.Aggregation != nil {
		encoded, err := json.Marshal(b.Aggregation)
		if err != nil {
			return fmt.Errorf("encode aggregation record for block %s: %w", b.ID, err)
		}
		aggregation = string(encoded)
	}

	_, err := s.db.Exec(`
INSERT INTO blocks (id, day, start_time, end_time, duration_seconds, title, source_app, selected_ticket, origin, aggregation)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	day = excluded.day,
	start_time = excluded.start_time,
	end_time = excluded.end_time,
	duration_seconds = excluded.duration_seconds,
	title = excluded.title,
	source_app = excluded.source_app,
	selected_ticket = excluded.selected_ticket,
	origin = excluded.origin,
	aggregation = excluded.aggregation;`,
		b.ID, day.Format(dayLayout), b.StartTime, b.EndTime, b.DurationSeconds,
		b.Title, b.SourceApp, b.SelectedTicket, string(b.Origin), aggregation,
	)
	if err != nil {
		return fmt.Errorf("save block %s: %w", b.ID, err)
	}
	return nil
}

// DeleteBlock removes a stored block. Missing rows yield ErrBlockNotFound.
func (s *SQLiteStore) DeleteBlock(day time.Time, id string) error {
	result, err := s.db.Exec(`DELETE FROM blocks WHERE day = ? AND id = ?;`, day.Format(dayLayout), id)
	if err != nil {
		return fmt.Errorf("delete block %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete block %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("block %s on %s: %w", id, day.Format(dayLayout), ErrBlockNotFound)
	}
	return nil
}

// ListBlocks returns the stored working-set blocks of a day ordered by
// start time.
func (s *SQLiteStore) ListBlocks(day time.Time) ([]block.ActivityBlock, error) {
	rows, err := s.db.Query(`
SELECT id, start_time, end_time, duration_seconds, title, source_app, selected_ticket, origin, aggregation
FROM blocks WHERE day = ? ORDER BY start_time, id;`, day.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]block.ActivityBlock, 0, 16)
	for rows.Next() {
		var b block.ActivityBlock
		var origin, aggregation string
		if err := rows.Scan(
			&b.ID, &b.StartTime, &b.EndTime, &b.DurationSeconds,
			&b.Title, &b.SourceApp, &b.SelectedTicket, &origin, &aggregation,
		); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}
		b.Origin = block.Origin(origin)
		if aggregation != "" {
			record := &block.AggregationRecord{}
			if err := json.Unmarshal([]byte(aggregation), record); err != nil {
				return nil, fmt.Errorf("decode aggregation record for block %s: %w", b.ID, err)
			}
			b.Aggregation = record
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate block rows: %w", err)
	}
	return blocks, nil
}

// GetBlock loads one stored block by id.
func (s *SQLiteStore) GetBlock(day time.Time, id string) (block.ActivityBlock, error) {
	blocks, err := s.ListBlocks(day)
	if err != nil {
		return block.ActivityBlock{}, err
	}
	for _, b := range blocks {
		if b.ID == id {
			return b, nil
		}
	}
	return block.ActivityBlock{}, fmt.Errorf("block %s on %s: %w", id, day.Format(dayLayout), ErrBlockNotFound)
}

// LoadExclusions reads the persisted exclusion set of a day.
func (s *SQLiteStore) LoadExclusions(day time.Time) (block.ExclusionSet, error) {
	rows, err := s.db.Query(`SELECT block_id FROM exclusions WHERE day = ?;`, day.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	defer rows.Close()

	set := block.NewExclusionSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan exclusion row: %w", err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exclusion rows: %w", err)
	}
	return set, nil
}

// ReplaceExclusions persists the current exclusion set of a day, replacing
// whatever was stored before.
func (s *SQLiteStore) ReplaceExclusions(day time.Time, set block.ExclusionSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin exclusions tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dayKey := day.Format(dayLayout)
	if _, err := tx.Exec(`DELETE FROM exclusions WHERE day = ?;`, dayKey); err != nil {
		return fmt.Errorf("clear exclusions: %w", err)
	}

	ids := set.IDs()
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := tx.Exec(`INSERT INTO exclusions (day, block_id) VALUES (?, ?);`, dayKey, id); err != nil {
			return fmt.Errorf("insert exclusion %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exclusions: %w", err)
	}
	return nil
}

// SaveProjectMapping upserts an explicit project-to-ticket mapping.
func (s *SQLiteStore) SaveProjectMapping(project, ticketKey, ticketName string) error {
	project = normalizeName(project)
	if project == "" || strings.TrimSpace(ticketKey) == "" {
		return errors.New("project and ticket key are required")
	}

	_, err := s.db.Exec(`
INSERT INTO ticket_mappings (project, ticket_key, ticket_name) VALUES (?, ?, ?)
ON CONFLICT(project) DO UPDATE SET ticket_key = excluded.ticket_key, ticket_name = excluded.ticket_name;`,
		project, strings.TrimSpace(ticketKey), strings.TrimSpace(ticketName),
	)
	if err != nil {
		return fmt.Errorf("save project mapping %q: %w", project, err)
	}
	return nil
}

// LookupProjectMapping implements suggest.MappingSource.
func (s *SQLiteStore) LookupProjectMapping(ctx context.Context, project string) ([]suggest.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ticket_key, ticket_name FROM ticket_mappings WHERE project = ?;`,
		normalizeName(project),
	)

	var ticketKey, ticketName string
	switch err := row.Scan(&ticketKey, &ticketName); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("lookup project mapping %q: %w", project, err)
	}

	return []suggest.Candidate{{
		TicketKey:  ticketKey,
		TicketName: ticketName,
		Confidence: 0.9,
		Reason:     fmt.Sprintf("mapped from project %q", strings.TrimSpace(project)),
		Source:     suggest.SourceMapping,
	}}, nil
}

// RecordUsage appends one logged (app, title, ticket) usage to the
// history that feeds the title and recency suggestion sources.
func (s *SQLiteStore) RecordUsage(sourceApp, title, ticketKey, ticketName string, usedAt time.Time) error {
	if strings.TrimSpace(ticketKey) == "" {
		return errors.New("ticket key is required")
	}

	_, err := s.db.Exec(`
INSERT INTO activity_history (source_app, title, ticket_key, ticket_name, used_at) VALUES (?, ?, ?, ?, ?);`,
		strings.TrimSpace(sourceApp), strings.TrimSpace(title),
		strings.TrimSpace(ticketKey), strings.TrimSpace(ticketName),
		usedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// SearchTitleHistory implements suggest.HistorySource. Confidence is the
// shared-token ratio between the query title and a past title, scaled
// below the explicit-mapping level.
func (s *SQLiteStore) SearchTitleHistory(ctx context.Context, title string, limit int) ([]suggest.Candidate, error) {
	queryTokens := titleTokens(title)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, ticket_key, ticket_name FROM activity_history ORDER BY used_at DESC LIMIT 500;`)
	if err != nil {
		return nil, fmt.Errorf("search title history: %w", err)
	}
	defer rows.Close()

	bestByTicket := make(map[string]suggest.Candidate)
	for rows.Next() {
		var pastTitle, ticketKey, ticketName string
		if err := rows.Scan(&pastTitle, &ticketKey, &ticketName); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		score := tokenOverlap(queryTokens, titleTokens(pastTitle))
		if score < 0.25 {
			continue
		}
		confidence := 0.85 * score
		if current, ok := bestByTicket[ticketKey]; ok && current.Confidence >= confidence {
			continue
		}
		bestByTicket[ticketKey] = suggest.Candidate{
			TicketKey:  ticketKey,
			TicketName: ticketName,
			Confidence: confidence,
			Reason:     fmt.Sprintf("similar past activity %q", pastTitle),
			Source:     suggest.SourceHistory,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	candidates := make([]suggest.Candidate, 0, len(bestByTicket))
	for _, candidate := range bestByTicket {
		candidates = append(candidates, candidate)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].TicketKey < candidates[j].TicketKey
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// RecentTickets implements suggest.RecencySource. Confidence decays with
// the recency rank.
func (s *SQLiteStore) RecentTickets(ctx context.Context, limit int) ([]suggest.Candidate, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT ticket_key, ticket_name, MAX(used_at) AS last_used
FROM activity_history GROUP BY ticket_key ORDER BY last_used DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent tickets: %w", err)
	}
	defer rows.Close()

	candidates := make([]suggest.Candidate, 0, limit)
	rank := 0
	for rows.Next() {
		var ticketKey, ticketName, lastUsed string
		if err := rows.Scan(&ticketKey, &ticketName, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan recent ticket row: %w", err)
		}

		confidence := 0.5 - 0.05*float64(rank)
		if confidence < 0.2 {
			confidence = 0.2
		}
		candidates = append(candidates, suggest.Candidate{
			TicketKey:  ticketKey,
			TicketName: ticketName,
			Confidence: confidence,
			Reason:     fmt.Sprintf("last used %s", lastUsed),
			Source:     suggest.SourceRecency,
		})
		rank++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent ticket rows: %w", err)
	}
	return candidates, nil
}

// RecordRejection increments the rejection counter of a suggestion
// pattern.
func (s *SQLiteStore) RecordRejection(sourceApp, titlePrefix, ticketKey string) error {
	if strings.TrimSpace(ticketKey) == "" {
		return errors.New("ticket key is required")
	}

	_, err := s.db.Exec(`
INSERT INTO rejections (source_app, title_prefix, ticket_key, count) VALUES (?, ?, ?, 1)
ON CONFLICT(source_app, title_prefix, ticket_key) DO UPDATE SET count = count + 1;`,
		strings.TrimSpace(sourceApp), titlePrefix, strings.TrimSpace(ticketKey),
	)
	if err != nil {
		return fmt.Errorf("record rejection: %w", err)
	}
	return nil
}

// RejectionCount implements suggest.RejectionChecker.
func (s *SQLiteStore) RejectionCount(ctx context.Context, sourceApp, titlePrefix, ticketKey string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT count FROM rejections WHERE source_app = ? AND title_prefix = ? AND ticket_key = ?;`,
		strings.TrimSpace(sourceApp), titlePrefix, strings.TrimSpace(ticketKey),
	)

	var count int
	switch err := row.Scan(&count); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("count rejections: %w", err)
	}
	return count, nil
}

func normalizeName(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(value)), " "))
}

func titleTokens(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(title)) {
		token := strings.Trim(field, ".,;:()[]{}\"'")
		if len(token) < 3 {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}

func tokenOverlap(query, past map[string]struct{}) float64 {
	if len(query) == 0 || len(past) == 0 {
		return 0
	}
	shared := 0
	for token := range query {
		if _, ok := past[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(query))
}

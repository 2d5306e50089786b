package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dropwatch/internal/config"
	"dropwatch/internal/dedupe"
	"dropwatch/internal/logging"
	"dropwatch/internal/product"
	"dropwatch/internal/scoring"
)

// Store manages the posting queue backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the queue database and applies the schema.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "queue"),
	}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applySchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("queue database schema version %d is newer than supported %d", version, schemaVersion)
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// AddItem admits an item into the posting queue. Admission is decided and
// committed by the dedupe store in one critical section; the queue insert is
// strictly ordered after that commit and rolled back on failure. Returns
// false with a nil error when the item is a duplicate.
func (s *Store) AddItem(ctx context.Context, item *product.Item, score float64, breakdown scoring.Breakdown, dedupeStore *dedupe.Store) (bool, error) {
	if item == nil {
		return false, errors.New("item is nil")
	}
	if dedupeStore == nil {
		return false, errors.New("dedupe store is nil")
	}

	admission := dedupeStore.Admit(item)
	if !admission.Admitted {
		s.logger.Debug("rejected duplicate item",
			logging.String(logging.FieldItemID, item.ID),
			logging.String(logging.FieldFingerprint, admission.Fingerprint),
			logging.String(logging.FieldMatchType, string(admission.Match)))
		return false, nil
	}

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		dedupeStore.Rollback(admission)
		return false, fmt.Errorf("marshal breakdown: %w", err)
	}

	admittedAt := time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO queue_entries (
            item_id, fingerprint, title, url, brand, category, store, price,
            source, limited_edition, release_state, stock_status, score,
            breakdown_json, admitted_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		admission.Fingerprint,
		nullableString(item.Title),
		nullableString(item.URL),
		nullableString(item.Brand),
		nullableString(item.Category),
		nullableString(item.Store),
		item.Price,
		nullableString(item.Source),
		boolToInt(item.LimitedEdition),
		string(item.ReleaseState),
		nullableString(string(item.StockStatus)),
		score,
		string(breakdownJSON),
		admittedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		dedupeStore.Rollback(admission)
		return false, fmt.Errorf("insert queue entry: %w", err)
	}

	s.logger.Info("queued item for posting",
		logging.String(logging.FieldItemID, item.ID),
		logging.String(logging.FieldFingerprint, admission.Fingerprint),
		logging.String(logging.FieldMatchType, string(admission.Match)),
		logging.Float64(logging.FieldScore, score))
	return true, nil
}

// List returns all entries ordered by score descending, with ties broken by
// earliest admission.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM queue_entries ORDER BY score DESC, admitted_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list queue entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Next returns the highest-priority entry, or nil when the queue is empty.
func (s *Store) Next(ctx context.Context) (*Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+entryColumns+` FROM queue_entries ORDER BY score DESC, admitted_at ASC, id ASC LIMIT 1`,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next queue entry: %w", err)
	}
	return entry, nil
}

// Remove deletes an entry by identifier. The posting layer calls this after
// actual publication.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete queue entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all entries from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// GetStats returns aggregate queue counts.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{StateCounts: make(map[product.ReleaseState]int)}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT release_state, limited_edition, COUNT(1) FROM queue_entries GROUP BY release_state, limited_edition`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var limited int
		var count int
		if err := rows.Scan(&state, &limited, &count); err != nil {
			return Stats{}, err
		}
		stats.TotalItems += count
		if limited != 0 {
			stats.LimitedEditionItems += count
		}
		stats.StateCounts[product.ReleaseState(state)] += count
	}
	return stats, rows.Err()
}

const entryColumns = "id, item_id, fingerprint, title, url, brand, category, store, price, source, limited_edition, release_state, stock_status, score, breakdown_json, admitted_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id          int64
		itemID      string
		fingerprint string
		title       sql.NullString
		url         sql.NullString
		brand       sql.NullString
		category    sql.NullString
		shop        sql.NullString
		price       float64
		source      sql.NullString
		limited     int
		state       string
		stock       sql.NullString
		score       float64
		breakdown   sql.NullString
		admittedRaw string
	)

	if err := scanner.Scan(
		&id,
		&itemID,
		&fingerprint,
		&title,
		&url,
		&brand,
		&category,
		&shop,
		&price,
		&source,
		&limited,
		&state,
		&stock,
		&score,
		&breakdown,
		&admittedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             id,
		ItemID:         itemID,
		Fingerprint:    fingerprint,
		Title:          title.String,
		URL:            url.String,
		Brand:          brand.String,
		Category:       category.String,
		Store:          shop.String,
		Price:          price,
		Source:         source.String,
		LimitedEdition: limited != 0,
		ReleaseState:   product.ReleaseState(state),
		StockStatus:    product.StockStatus(stock.String),
		Score:          score,
		BreakdownJSON:  breakdown.String,
	}
	if admitted, err := time.Parse(time.RFC3339Nano, admittedRaw); err == nil {
		entry.AdmittedAt = admitted
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

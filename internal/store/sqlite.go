package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/evidence-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS content_evidence (
	id         TEXT PRIMARY KEY,
	content_id TEXT NOT NULL UNIQUE,
	bundle     TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_content_evidence_confidence ON content_evidence(confidence);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveEvidence(ctx context.Context, contentID string, bundle *model.EvidenceBundle) error {
	data, err := encodeBundle(contentID, bundle)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_evidence (id, content_id, bundle, confidence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(content_id) DO UPDATE
		 SET bundle = excluded.bundle, confidence = excluded.confidence, updated_at = excluded.updated_at`,
		uuid.New().String(), contentID, string(data), bundle.OverallConfidence, now, now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save evidence %s", contentID)
	}
	return nil
}

func (s *SQLiteStore) GetEvidence(ctx context.Context, contentID string) (*model.EvidenceBundle, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT bundle FROM content_evidence WHERE content_id = ?`,
		contentID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get evidence %s", contentID)
	}
	return decodeBundle([]byte(data))
}

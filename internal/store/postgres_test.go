package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS content_evidence`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvidence_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	bundle := &model.EvidenceBundle{OverallConfidence: 83}

	mock.ExpectExec(`INSERT INTO content_evidence .* ON CONFLICT \(content_id\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), "content-1", pgxmock.AnyArg(), 83, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveEvidence(context.Background(), "content-1", bundle))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvidence_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO content_evidence`).
		WithArgs(pgxmock.AnyArg(), "content-1", pgxmock.AnyArg(), 0, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := s.SaveEvidence(context.Background(), "content-1", &model.EvidenceBundle{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: save evidence content-1")
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEvidence_BlankID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	err := s.SaveEvidence(context.Background(), "  ", &model.EvidenceBundle{})
	assert.ErrorIs(t, err, ErrInvalidContentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvidence(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	data, err := json.Marshal(model.EvidenceBundle{OverallConfidence: 71, DataSources: []string{"Claude Multi-Pass Analysis"}})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT bundle FROM content_evidence WHERE content_id = \$1`).
		WithArgs("content-1").
		WillReturnRows(pgxmock.NewRows([]string{"bundle"}).AddRow(data))

	got, err := s.GetEvidence(context.Background(), "content-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 71, got.OverallConfidence)
	assert.Equal(t, []string{"Claude Multi-Pass Analysis"}, got.DataSources)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvidence_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT bundle FROM content_evidence`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetEvidence(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvidence_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT bundle FROM content_evidence`).
		WithArgs("content-1").
		WillReturnError(errors.New("timeout"))

	_, err := s.GetEvidence(context.Background(), "content-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get evidence")
}

package postgres_test

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/domain/entity"
	pg "news-aggregator/internal/infra/adapter/persistence/postgres"
)

/* ─────────────────────────── helpers ─────────────────────────── */

var (
	published = time.Date(2025, 7, 19, 8, 0, 0, 0, time.UTC)
	takenAt   = time.Date(2025, 7, 19, 9, 0, 0, 0, time.UTC)
)

func article(id, title string, sources ...string) *entity.Article {
	return &entity.Article{
		ID:          id,
		Title:       title,
		URL:         "https://example.com/" + id,
		PublishedAt: published,
		SourceName:  sources[0],
		Categories:  []string{},
		SourceCount: len(sources),
		SourceNames: sources,
	}
}

func payload(t *testing.T, a *entity.Article) []byte {
	t.Helper()
	b, err := json.Marshal(a)
	require.NoError(t, err)
	return b
}

// payloadFor matches a JSON payload argument carrying the given article id.
type payloadFor string

func (p payloadFor) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if !ok {
		return false
	}
	var decoded struct {
		ID string `json:"id"`
	}
	return json.Unmarshal(b, &decoded) == nil && decoded.ID == string(p)
}

/* ─────────────────────────── 1. Save ─────────────────────────── */

func TestSnapshotRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a := article("a1", "First", "Wire", "Daily")
	b := article("b2", "Second", "Wire")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO article_snapshots"))
	prep.ExpectExec().
		WithArgs("a1", a.URL, "First", 2, published, payloadFor("a1"), takenAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("b2", b.URL, "Second", 1, published, payloadFor("b2"), takenAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := pg.NewSnapshotRepo(db)
	require.NoError(t, repo.Save(context.Background(), []*entity.Article{a, nil, b}, takenAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Save_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO article_snapshots"))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := pg.NewSnapshotRepo(db)
	err = repo.Save(context.Background(), []*entity.Article{article("a1", "First", "Wire")}, takenAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Save_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err = pg.NewSnapshotRepo(db).Save(context.Background(), nil, takenAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin")
}

/* ─────────────────────────── 2. Latest ─────────────────────────── */

func TestSnapshotRepo_Latest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	want := []*entity.Article{
		article("a1", "First", "Wire", "Daily"),
		article("b2", "Second", "Wire"),
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY published_at DESC, id")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(payload(t, want[0])).
			AddRow(payload(t, want[1])))

	got, err := pg.NewSnapshotRepo(db).Latest(context.Background(), 10)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Latest_ZeroLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	got, err := pg.NewSnapshotRepo(db).Latest(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Latest_BadPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT payload").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"publishedAt":"not a time"}`)))

	_, err = pg.NewSnapshotRepo(db).Latest(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestSnapshotRepo_Latest_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT payload").WillReturnError(errors.New("syntax error"))

	_, err = pg.NewSnapshotRepo(db).Latest(context.Background(), 5)
	assert.Error(t, err)
}

/* ─────────────────────────── 3. MostRepeated ─────────────────────────── */

func TestSnapshotRepo_MostRepeated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a := article("a1", "First", "Wire", "Daily", "Herald")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE source_count >= $1")).
		WithArgs(2, 20).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload(t, a)))

	got, err := pg.NewSnapshotRepo(db).MostRepeated(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].SourceCount)
	assert.Equal(t, []string{"Wire", "Daily", "Herald"}, got[0].SourceNames)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ─────────────────────────── 4. Prune ─────────────────────────── */

func TestSnapshotRepo_Prune(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cutoff := takenAt.Add(-24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM article_snapshots WHERE snapshot_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := pg.NewSnapshotRepo(db).Prune(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_scores" \(LIKE "scores" INCLUDING DEFAULTS\) ON COMMIT DROP`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_scores"}, []string{"user_id", "segment_id", "score"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "scores" \("user_id", "segment_id", "score"\) SELECT "user_id", "segment_id", "score" FROM "_tmp_upsert_scores" ON CONFLICT \("user_id", "segment_id"\) DO UPDATE SET "score" = EXCLUDED\."score"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "scores",
		Columns:      []string{"user_id", "segment_id", "score"},
		ConflictKeys: []string{"user_id", "segment_id"},
	}, [][]any{
		{"u1", "s1", 0.9},
		{"u1", "s2", 0.4},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "scores",
		Columns:      []string{"a"},
		ConflictKeys: []string{"a"},
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkUpsert_ConfigValidation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{Table: "t", ConflictKeys: []string{"a"}}, [][]any{{1}})
	assert.Error(t, err)

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{Table: "t", Columns: []string{"a"}}, [][]any{{1}})
	assert.Error(t, err)
}

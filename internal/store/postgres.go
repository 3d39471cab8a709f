package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/daybrief/digest-cli/internal/db"
	"github.com/daybrief/digest-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. The caller owns the pool's
// lifecycle.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS raw_articles (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source       TEXT NOT NULL,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL UNIQUE,
	published_at TIMESTAMPTZ,
	fetched_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed    BOOLEAN NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS idx_raw_articles_processed_fetched ON raw_articles(processed, fetched_at DESC);

CREATE TABLE IF NOT EXISTS segments (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	summary          TEXT NOT NULL,
	content          TEXT NOT NULL DEFAULT '',
	topics           TEXT[] NOT NULL DEFAULT '{}',
	importance_score DOUBLE PRECISION NOT NULL CHECK (importance_score >= 0 AND importance_score <= 1),
	source_urls      TEXT[] NOT NULL DEFAULT '{}',
	source_names     TEXT[] NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_segments_created_at ON segments(created_at DESC);

CREATE TABLE IF NOT EXISTS article_segments (
	article_id TEXT NOT NULL REFERENCES raw_articles(id),
	segment_id TEXT NOT NULL REFERENCES segments(id),
	PRIMARY KEY (article_id, segment_id)
);

CREATE TABLE IF NOT EXISTS user_preferences (
	id                      TEXT PRIMARY KEY,
	display_name            TEXT,
	topics                  TEXT[] NOT NULL DEFAULT '{}',
	sources                 TEXT[] NOT NULL DEFAULT '{}',
	reading_time_preference TEXT NOT NULL DEFAULT 'medium',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_interactions (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id          TEXT NOT NULL,
	segment_id       TEXT NOT NULL REFERENCES segments(id),
	interaction_type TEXT NOT NULL,
	duration_seconds INTEGER,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_user_interactions_user ON user_interactions(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_segment_scores (
	user_id    TEXT NOT NULL,
	segment_id TEXT NOT NULL REFERENCES segments(id),
	score      DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 1),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, segment_id)
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// UpsertArticles inserts raw articles, silently skipping URLs already seen.
// Returns the number of rows actually inserted.
func (s *PostgresStore) UpsertArticles(ctx context.Context, articles []model.Article) (int, error) {
	inserted := 0
	for _, a := range articles {
		id := a.ID
		if id == "" {
			id = uuid.New().String()
		}
		fetchedAt := a.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}

		tag, err := s.pool.Exec(ctx,
			`INSERT INTO raw_articles (id, source, title, content, url, published_at, fetched_at, processed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, false)
			 ON CONFLICT (url) DO NOTHING`,
			id, a.Source, a.Title, a.Content, a.URL, a.PublishedAt, fetchedAt,
		)
		if err != nil {
			return inserted, eris.Wrapf(err, "postgres: upsert article %s", a.URL)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PostgresStore) ListUnprocessedArticles(ctx context.Context, since time.Time, limit int) ([]model.Article, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, title, content, url, published_at, fetched_at, processed
		 FROM raw_articles
		 WHERE processed = false AND fetched_at >= $1
		 ORDER BY fetched_at DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unprocessed articles")
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.Content, &a.URL, &a.PublishedAt, &a.FetchedAt, &a.Processed); err != nil {
			return nil, eris.Wrap(err, "postgres: scan article")
		}
		articles = append(articles, a)
	}
	return articles, eris.Wrap(rows.Err(), "postgres: list unprocessed iterate")
}

// CommitSegmentation persists one batch's segments and links and flips the
// processed flag, all in a single transaction so a failed run leaves the
// batch selectable for wholesale retry.
func (s *PostgresStore) CommitSegmentation(ctx context.Context, articleIDs []string, segments []model.Segment, links []model.ArticleSegmentLink) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin segmentation tx")
	}
	defer tx.Rollback(ctx)

	for _, seg := range segments {
		createdAt := seg.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO segments (id, title, summary, content, topics, importance_score, source_urls, source_names, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			seg.ID, seg.Title, seg.Summary, seg.Content, seg.Topics, seg.ImportanceScore, seg.SourceURLs, seg.SourceNames, createdAt,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert segment %s", seg.ID)
		}
	}

	for _, link := range links {
		if _, err := tx.Exec(ctx,
			`INSERT INTO article_segments (article_id, segment_id) VALUES ($1, $2)
			 ON CONFLICT (article_id, segment_id) DO NOTHING`,
			link.ArticleID, link.SegmentID,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert link %s -> %s", link.ArticleID, link.SegmentID)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE raw_articles SET processed = true WHERE id = ANY($1)`,
		articleIDs,
	); err != nil {
		return eris.Wrap(err, "postgres: mark articles processed")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit segmentation tx")
}

func (s *PostgresStore) ListRecentSegments(ctx context.Context, since time.Time, limit int) ([]model.Segment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, summary, content, topics, importance_score, source_urls, source_names, created_at
		 FROM segments
		 WHERE created_at >= $1
		 ORDER BY created_at DESC
		 LIMIT NULLIF($2, 0)`,
		since, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recent segments")
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var seg model.Segment
		if err := rows.Scan(&seg.ID, &seg.Title, &seg.Summary, &seg.Content, &seg.Topics, &seg.ImportanceScore, &seg.SourceURLs, &seg.SourceNames, &seg.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan segment")
		}
		segments = append(segments, seg)
	}
	return segments, eris.Wrap(rows.Err(), "postgres: list segments iterate")
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.UserPreferences, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, display_name, topics, sources, reading_time_preference, created_at, updated_at
		 FROM user_preferences`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list users")
	}
	defer rows.Close()

	var users []model.UserPreferences
	for rows.Next() {
		u, err := scanPreferences(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: list users iterate")
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, display_name, topics, sources, reading_time_preference, created_at, updated_at
		 FROM user_preferences WHERE id = $1`,
		userID,
	)
	u, err := scanPreferences(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get preferences %s", userID)
	}
	return u, nil
}

func scanPreferences(row pgx.Row) (*model.UserPreferences, error) {
	var u model.UserPreferences
	var displayName *string
	var readingTime string
	if err := row.Scan(&u.ID, &displayName, &u.Topics, &u.Sources, &readingTime, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan preferences")
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	u.ReadingTimePreference = model.ReadingTime(readingTime)
	return &u, nil
}

func (s *PostgresStore) UpsertPreferences(ctx context.Context, prefs model.UserPreferences) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_preferences (id, display_name, topics, sources, reading_time_preference, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name = $2, topics = $3, sources = $4, reading_time_preference = $5, updated_at = $6`,
		prefs.ID, prefs.DisplayName, prefs.Topics, prefs.Sources, string(prefs.ReadingTimePreference), now,
	)
	return eris.Wrapf(err, "postgres: upsert preferences %s", prefs.ID)
}

func (s *PostgresStore) RecordInteraction(ctx context.Context, interaction model.UserInteraction) error {
	id := interaction.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := interaction.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_interactions (id, user_id, segment_id, interaction_type, duration_seconds, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, interaction.UserID, interaction.SegmentID, string(interaction.Type), interaction.DurationSeconds, createdAt,
	)
	return eris.Wrap(err, "postgres: record interaction")
}

func (s *PostgresStore) ListInteractions(ctx context.Context, userID string) ([]model.UserInteraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, segment_id, interaction_type, duration_seconds, created_at
		 FROM user_interactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list interactions %s", userID)
	}
	defer rows.Close()

	var interactions []model.UserInteraction
	for rows.Next() {
		var it model.UserInteraction
		var kind string
		if err := rows.Scan(&it.ID, &it.UserID, &it.SegmentID, &kind, &it.DurationSeconds, &it.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan interaction")
		}
		it.Type = model.InteractionType(kind)
		interactions = append(interactions, it)
	}
	return interactions, eris.Wrap(rows.Err(), "postgres: list interactions iterate")
}

// UpsertScores replaces all given (user, segment) score rows in one bulk
// round trip.
func (s *PostgresStore) UpsertScores(ctx context.Context, scores []model.UserSegmentScore) error {
	if len(scores) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(scores))
	now := time.Now().UTC()
	for _, sc := range scores {
		updatedAt := sc.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		rows = append(rows, []any{sc.UserID, sc.SegmentID, sc.Score, updatedAt})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "user_segment_scores",
		Columns:      []string{"user_id", "segment_id", "score", "updated_at"},
		ConflictKeys: []string{"user_id", "segment_id"},
	}, rows)
	return eris.Wrap(err, "postgres: upsert scores")
}

func (s *PostgresStore) GetScores(ctx context.Context, userID string, segmentIDs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(segmentIDs))
	if len(segmentIDs) == 0 {
		return scores, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT segment_id, score FROM user_segment_scores
		 WHERE user_id = $1 AND segment_id = ANY($2)`,
		userID, segmentIDs,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get scores %s", userID)
	}
	defer rows.Close()

	for rows.Next() {
		var segmentID string
		var score float64
		if err := rows.Scan(&segmentID, &score); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		scores[segmentID] = score
	}
	return scores, eris.Wrap(rows.Err(), "postgres: get scores iterate")
}

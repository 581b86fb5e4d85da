package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"quantumdaily/internal/domain"
	"quantumdaily/internal/ports"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = ports.ErrNotFound

// Repository persists preferences, feedback, articles, and issues in SQLite.
type Repository struct {
	db *sql.DB
}

var (
	_ ports.PreferenceStore = (*Repository)(nil)
	_ ports.FeedbackStore   = (*Repository)(nil)
	_ ports.ArticleStore    = (*Repository)(nil)
	_ ports.IssueStore      = (*Repository)(nil)
)

// Open creates the database file if needed and initializes the schema.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return repo, nil
}

// Close closes the underlying connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		industry_weight REAL NOT NULL,
		tech_weight REAL NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		send_hour_local INTEGER NOT NULL DEFAULT 8,
		source_bias TEXT NOT NULL DEFAULT '{}',
		topic_bias TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		published_at DATETIME,
		source TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		article_id INTEGER NOT NULL,
		signal TEXT NOT NULL,
		aspect TEXT NOT NULL,
		ts DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS issues (
		date TEXT PRIMARY KEY,
		items_json TEXT NOT NULL
	);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadPreferences returns the singleton preference record, creating it
// with defaults on first access.
func (r *Repository) LoadPreferences(ctx context.Context) (domain.Preferences, error) {
	row := sq.Select("industry_weight", "tech_weight", "email", "send_hour_local", "source_bias", "topic_bias").
		From("preferences").
		Where(sq.Eq{"id": 1}).
		RunWith(r.db).
		QueryRowContext(ctx)

	var (
		prefs      domain.Preferences
		sourceBias string
		topicBias  string
	)
	err := row.Scan(&prefs.IndustryWeight, &prefs.TechWeight, &prefs.Email,
		&prefs.SendHourLocal, &sourceBias, &topicBias)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := domain.DefaultPreferences()
		if saveErr := r.SavePreferences(ctx, defaults); saveErr != nil {
			return domain.Preferences{}, fmt.Errorf("create default preferences: %w", saveErr)
		}
		return defaults, nil
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	if err := json.Unmarshal([]byte(sourceBias), &prefs.SourceBias); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode source bias: %w", err)
	}
	if err := json.Unmarshal([]byte(topicBias), &prefs.TopicBias); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode topic bias: %w", err)
	}
	if prefs.SourceBias == nil {
		prefs.SourceBias = domain.BiasMap{}
	}
	if prefs.TopicBias == nil {
		prefs.TopicBias = domain.BiasMap{}
	}

	return prefs, nil
}

// SavePreferences upserts the singleton record.
func (r *Repository) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	sourceBias, err := json.Marshal(prefs.SourceBias)
	if err != nil {
		return fmt.Errorf("encode source bias: %w", err)
	}
	topicBias, err := json.Marshal(prefs.TopicBias)
	if err != nil {
		return fmt.Errorf("encode topic bias: %w", err)
	}

	_, err = sq.Insert("preferences").
		Columns("id", "industry_weight", "tech_weight", "email", "send_hour_local", "source_bias", "topic_bias").
		Values(1, prefs.IndustryWeight, prefs.TechWeight, prefs.Email, prefs.SendHourLocal, string(sourceBias), string(topicBias)).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			industry_weight = excluded.industry_weight,
			tech_weight = excluded.tech_weight,
			email = excluded.email,
			send_hour_local = excluded.send_hour_local,
			source_bias = excluded.source_bias,
			topic_bias = excluded.topic_bias`).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// AppendFeedback stores one immutable feedback event.
func (r *Repository) AppendFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := sq.Insert("feedback").
		Columns("article_id", "signal", "aspect", "ts").
		Values(event.ArticleID, event.Signal, event.Aspect, ts).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}

// SaveArticle inserts a selected item as an article row and returns its ID.
func (r *Repository) SaveArticle(ctx context.Context, item domain.Item) (int64, error) {
	res, err := sq.Insert("articles").
		Columns("url", "title", "content", "published_at", "source", "category", "score").
		Values(item.URL, item.Title, item.Content, item.PublishedAt, item.Source, item.Category, item.Score).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("save article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("article id: %w", err)
	}
	return id, nil
}

// SaveIssue upserts the issue snapshot for its date.
func (r *Repository) SaveIssue(ctx context.Context, issue domain.DailyIssue) error {
	payload, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("encode issue: %w", err)
	}

	_, err = sq.Insert("issues").
		Columns("date", "items_json").
		Values(issue.Date, string(payload)).
		Suffix("ON CONFLICT(date) DO UPDATE SET items_json = excluded.items_json").
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save issue: %w", err)
	}
	return nil
}

// LoadIssue returns the snapshot for a date, or ErrNotFound.
func (r *Repository) LoadIssue(ctx context.Context, date string) (domain.DailyIssue, error) {
	row := sq.Select("items_json").
		From("issues").
		Where(sq.Eq{"date": date}).
		RunWith(r.db).
		QueryRowContext(ctx)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DailyIssue{}, ErrNotFound
		}
		return domain.DailyIssue{}, fmt.Errorf("load issue: %w", err)
	}

	var issue domain.DailyIssue
	if err := json.Unmarshal([]byte(payload), &issue); err != nil {
		return domain.DailyIssue{}, fmt.Errorf("decode issue: %w", err)
	}
	return issue, nil
}

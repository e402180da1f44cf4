package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wenhao1996/jikelens/model"
)

// SqliteStore implements PostStorage using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			link TEXT NOT NULL,
			title TEXT NOT NULL,
			selected_date TEXT NOT NULL,
			content TEXT,
			content_length_type TEXT NOT NULL,
			tags TEXT NOT NULL,
			topic TEXT,
			author_url TEXT,
			author_name TEXT,
			author_follower_num INTEGER,
			author_following_num INTEGER,
			like_count INTEGER NOT NULL DEFAULT 0,
			post_type TEXT NOT NULL,
			sentiment_type TEXT NOT NULL,
			is_hotspot INTEGER NOT NULL DEFAULT 0,
			is_creative INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
			UNIQUE(run_id, link)
		);

		CREATE INDEX IF NOT EXISTS idx_posts_run_likes
		ON posts(run_id, like_count DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// BeginRun registers a new run and returns its generated ID.
func (s *SqliteStore) BeginRun(ctx context.Context) (string, error) {
	runID := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id) VALUES (?)",
		runID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return runID, nil
}

// SavePosts stores posts under a run inside a single transaction. A post
// with a link already present in the run replaces the earlier row.
func (s *SqliteStore) SavePosts(ctx context.Context, runID string, posts []model.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO posts
		(run_id, link, title, selected_date, content, content_length_type, tags, topic,
		 author_url, author_name, author_follower_num, author_following_num,
		 like_count, post_type, sentiment_type, is_hotspot, is_creative)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, post := range posts {
		tags, err := json.Marshal(post.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for %s: %w", post.Link, err)
		}

		var authorURL, authorName interface{}
		var followerNum, followingNum interface{}
		if post.Author != nil {
			authorURL = post.Author.URL
			authorName = post.Author.Name
			followerNum = post.Author.FollowerNum
			followingNum = post.Author.FollowingNum
		}

		_, err = stmt.ExecContext(ctx,
			runID,
			post.Link,
			post.Title,
			post.SelectedDate,
			post.Content,
			post.ContentLengthType.String(),
			string(tags),
			post.Topic,
			authorURL,
			authorName,
			followerNum,
			followingNum,
			post.LikeCount,
			post.PostType.String(),
			post.SentimentType.String(),
			boolToInt(post.IsHotspot),
			boolToInt(post.IsCreative),
		)
		if err != nil {
			return fmt.Errorf("failed to insert post %s: %w", post.Link, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE runs SET updated_at = datetime('now') WHERE run_id = ?",
		runID)
	if err != nil {
		return fmt.Errorf("failed to update run timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadPosts returns a run's posts ordered by like count, descending.
// Returns empty slice if the run doesn't exist.
func (s *SqliteStore) LoadPosts(ctx context.Context, runID string) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT link, title, selected_date, content, content_length_type, tags, topic,
		       author_url, author_name, author_follower_num, author_following_num,
		       like_count, post_type, sentiment_type, is_hotspot, is_creative
		FROM posts
		WHERE run_id = ?
		ORDER BY like_count DESC, id ASC`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{} // Start with empty slice, not nil
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

func scanPostRow(rows *sql.Rows) (model.Post, error) {
	var post model.Post
	var content, topic sql.NullString
	var tagsJSON, lengthTypeStr, postTypeStr, sentimentStr string
	var authorURL, authorName sql.NullString
	var followerNum, followingNum sql.NullInt64
	var isHotspot, isCreative int

	err := rows.Scan(
		&post.Link,
		&post.Title,
		&post.SelectedDate,
		&content,
		&lengthTypeStr,
		&tagsJSON,
		&topic,
		&authorURL,
		&authorName,
		&followerNum,
		&followingNum,
		&post.LikeCount,
		&postTypeStr,
		&sentimentStr,
		&isHotspot,
		&isCreative,
	)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to scan post: %w", err)
	}

	post.Content = content.String
	post.Topic = topic.String
	post.IsHotspot = isHotspot != 0
	post.IsCreative = isCreative != 0

	if err := json.Unmarshal([]byte(tagsJSON), &post.Tags); err != nil {
		return model.Post{}, fmt.Errorf("invalid tags %q in database: %w", tagsJSON, err)
	}

	// Enum names in the database come from our own String() methods; an
	// unknown name indicates data corruption or a schema mismatch.
	lengthType, err := model.ParseContentLengthType(lengthTypeStr)
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid content length type %q in database: %w", lengthTypeStr, err)
	}
	post.ContentLengthType = lengthType

	postType, err := model.ParsePostType(postTypeStr)
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid post type %q in database: %w", postTypeStr, err)
	}
	post.PostType = postType

	sentiment, err := model.ParseSentimentType(sentimentStr)
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid sentiment type %q in database: %w", sentimentStr, err)
	}
	post.SentimentType = sentiment

	if authorURL.Valid {
		post.Author = &model.Author{
			URL:          authorURL.String,
			Name:         authorName.String,
			FollowerNum:  int(followerNum.Int64),
			FollowingNum: int(followingNum.Int64),
		}
	}

	return post, nil
}

// ListRuns returns run IDs, most recently updated first.
func (s *SqliteStore) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id FROM runs ORDER BY updated_at DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []string{} // Start with empty slice, not nil
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, runID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its posts.
func (s *SqliteStore) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Explicit child delete: foreign_keys is off by default in SQLite.
	if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete run posts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Verify SqliteStore implements PostStorage
var _ PostStorage = (*SqliteStore)(nil)

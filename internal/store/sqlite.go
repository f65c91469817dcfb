package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/postloom/postloom/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	content TEXT NOT NULL,
	scheduled_time TIMESTAMP NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id);

CREATE TABLE IF NOT EXISTS social_accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	username TEXT NOT NULL,
	access_token TEXT NOT NULL,
	refresh_token TEXT,
	token_expiry TIMESTAMP,
	connected BOOLEAN NOT NULL DEFAULT 1,
	connected_at TIMESTAMP NOT NULL,
	profile_data TEXT NOT NULL DEFAULT '',
	UNIQUE(user_id, platform)
);

CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	value TEXT NOT NULL
);
`

// SQLite is the embedded-file adapter.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "local.db"
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SQLite) Close() error                   { return s.db.Close() }

const postColumns = "id, user_id, platform, content, scheduled_time, status, created_at, updated_at"

func scanPost(row interface{ Scan(...interface{}) error }) (*types.Post, error) {
	var p types.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Platform, &p.Content,
		&p.ScheduledTime, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) FindAllPosts(ctx context.Context, userID string) ([]types.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE user_id = ? ORDER BY scheduled_time ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []types.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *SQLite) FindPostByID(ctx context.Context, id uint64) (*types.Post, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *SQLite) CreatePost(ctx context.Context, post *types.Post) error {
	if err := prepareNewPost(post, time.Now().UTC()); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, platform, content, scheduled_time, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.UserID, post.Platform, post.Content, post.ScheduledTime,
		post.Status, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = uint64(id)
	return nil
}

func (s *SQLite) UpdatePost(ctx context.Context, id uint64, upd PostUpdate) (*types.Post, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	if upd.Platform != nil {
		sets = append(sets, "platform = ?")
		args = append(args, *upd.Platform)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.ScheduledTime != nil {
		sets = append(sets, "scheduled_time = ?")
		args = append(args, *upd.ScheduledTime)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.FindPostByID(ctx, id)
}

func (s *SQLite) DeletePost(ctx context.Context, id uint64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const accountColumns = "id, user_id, platform, username, access_token, refresh_token, token_expiry, connected, connected_at, profile_data"

func scanAccount(row interface{ Scan(...interface{}) error }) (*types.SocialAccount, error) {
	var (
		a       types.SocialAccount
		refresh sql.NullString
		expiry  sql.NullTime
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.Username, &a.AccessToken,
		&refresh, &expiry, &a.Connected, &a.ConnectedAt, &a.ProfileData)
	if err != nil {
		return nil, err
	}
	if refresh.Valid {
		a.RefreshToken = &refresh.String
	}
	if expiry.Valid {
		t := expiry.Time
		a.TokenExpiry = &t
	}
	return &a, nil
}

func (s *SQLite) FindAllSocialAccounts(ctx context.Context, userID string) ([]types.SocialAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM social_accounts WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accts []types.SocialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accts = append(accts, *a)
	}
	return accts, rows.Err()
}

func (s *SQLite) FindSocialAccountByPlatform(ctx context.Context, userID, platform string) (*types.SocialAccount, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM social_accounts WHERE user_id = ? AND platform = ?",
		userID, platform)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *SQLite) CreateSocialAccount(ctx context.Context, acct *types.SocialAccount) error {
	if err := prepareNewAccount(acct, time.Now().UTC()); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO social_accounts
		 (user_id, platform, username, access_token, refresh_token, token_expiry, connected, connected_at, profile_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.UserID, acct.Platform, acct.Username, acct.AccessToken,
		acct.RefreshToken, acct.TokenExpiry, acct.Connected, acct.ConnectedAt, acct.ProfileData)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	acct.ID = uint64(id)
	return nil
}

func (s *SQLite) UpdateSocialAccount(ctx context.Context, userID, platform string, upd AccountUpdate) (*types.SocialAccount, error) {
	if err := validateAccountKey(userID, platform); err != nil {
		return nil, err
	}
	if upd.empty() {
		return nil, &ValidationError{Field: "fields", Message: "no fields to update"}
	}

	sets := []string{}
	args := []interface{}{}
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.AccessToken != nil {
		sets = append(sets, "access_token = ?")
		args = append(args, *upd.AccessToken)
	}
	if upd.RefreshToken != nil {
		sets = append(sets, "refresh_token = ?")
		args = append(args, *upd.RefreshToken)
	}
	if upd.TokenExpiry != nil {
		sets = append(sets, "token_expiry = ?")
		args = append(args, *upd.TokenExpiry)
	}
	if upd.Connected != nil {
		sets = append(sets, "connected = ?")
		args = append(args, *upd.Connected)
	}
	if upd.ProfileData != nil {
		sets = append(sets, "profile_data = ?")
		args = append(args, *upd.ProfileData)
	}
	args = append(args, userID, platform)

	res, err := s.db.ExecContext(ctx,
		"UPDATE social_accounts SET "+strings.Join(sets, ", ")+" WHERE user_id = ? AND platform = ?",
		args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.FindSocialAccountByPlatform(ctx, userID, platform)
}

// UpsertSocialAccount relies on the (user_id, platform) unique constraint
// and ON CONFLICT so concurrent connects cannot produce duplicate rows.
func (s *SQLite) UpsertSocialAccount(ctx context.Context, acct *types.SocialAccount) (*types.SocialAccount, error) {
	if err := prepareNewAccount(acct, time.Now().UTC()); err != nil {
		return nil, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO social_accounts
		 (user_id, platform, username, access_token, refresh_token, token_expiry, connected, connected_at, profile_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, platform) DO UPDATE SET
			username = excluded.username,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expiry = excluded.token_expiry,
			connected = excluded.connected,
			connected_at = excluded.connected_at,
			profile_data = excluded.profile_data`,
		acct.UserID, acct.Platform, acct.Username, acct.AccessToken,
		acct.RefreshToken, acct.TokenExpiry, acct.Connected, acct.ConnectedAt, acct.ProfileData)
	if err != nil {
		return nil, err
	}
	return s.FindSocialAccountByPlatform(ctx, acct.UserID, acct.Platform)
}

func (s *SQLite) DeleteSocialAccount(ctx context.Context, userID, platform string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM social_accounts WHERE user_id = ? AND platform = ?", userID, platform)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Settings(ctx context.Context) ([]types.Setting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []types.Setting
	for rows.Next() {
		var st types.Setting
		if err := rows.Scan(&st.ID, &st.Name, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/postloom/postloom/internal/types"
)

// ErrNotFound is returned for lookups, updates and deletes that reference
// a row that does not exist. Adapters never leak driver error types.
var ErrNotFound = errors.New("record not found")

// ValidationError reports missing or malformed input to a write operation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PostUpdate carries the fields of a partial post update. Nil fields are
// left untouched; updated_at is always restamped.
type PostUpdate struct {
	Platform      *string
	Content       *string
	ScheduledTime *time.Time
	Status        *string
}

func (u PostUpdate) validate() error {
	if u.Status != nil && !types.ValidStatus(*u.Status) {
		return &ValidationError{Field: "status", Message: "unknown status " + *u.Status}
	}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" {
		return &ValidationError{Field: "content", Message: "must not be empty"}
	}
	return nil
}

// AccountUpdate carries the fields of a partial social account update,
// keyed by (userID, platform).
type AccountUpdate struct {
	Username     *string
	AccessToken  *string
	RefreshToken *string
	TokenExpiry  *time.Time
	Connected    *bool
	ProfileData  *string
}

func (u AccountUpdate) empty() bool {
	return u.Username == nil && u.AccessToken == nil && u.RefreshToken == nil &&
		u.TokenExpiry == nil && u.Connected == nil && u.ProfileData == nil
}

// Store is the persistence contract shared by both backends.
type Store interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	FindAllPosts(ctx context.Context, userID string) ([]types.Post, error)
	FindPostByID(ctx context.Context, id uint64) (*types.Post, error)
	CreatePost(ctx context.Context, post *types.Post) error
	UpdatePost(ctx context.Context, id uint64, upd PostUpdate) (*types.Post, error)
	DeletePost(ctx context.Context, id uint64) error

	FindAllSocialAccounts(ctx context.Context, userID string) ([]types.SocialAccount, error)
	FindSocialAccountByPlatform(ctx context.Context, userID, platform string) (*types.SocialAccount, error)
	CreateSocialAccount(ctx context.Context, acct *types.SocialAccount) error
	UpdateSocialAccount(ctx context.Context, userID, platform string, upd AccountUpdate) (*types.SocialAccount, error)
	UpsertSocialAccount(ctx context.Context, acct *types.SocialAccount) (*types.SocialAccount, error)
	DeleteSocialAccount(ctx context.Context, userID, platform string) error

	Settings(ctx context.Context) ([]types.Setting, error)
}

// Config selects the backend once at process start.
type Config struct {
	Driver string // "sqlite" (default) or "postgres"
	DSN    string // postgres connection string
	Path   string // sqlite database file
}

func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return OpenPostgres(cfg.DSN)
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

func prepareNewPost(p *types.Post, now time.Time) error {
	if strings.TrimSpace(p.Content) == "" {
		return &ValidationError{Field: "content", Message: "required"}
	}
	if strings.TrimSpace(p.Platform) == "" {
		return &ValidationError{Field: "platform", Message: "required"}
	}
	if p.ScheduledTime.IsZero() {
		return &ValidationError{Field: "scheduledTime", Message: "required"}
	}
	if p.Status == "" {
		p.Status = types.StatusDraft
	}
	if !types.ValidStatus(p.Status) {
		return &ValidationError{Field: "status", Message: "unknown status " + p.Status}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}

func prepareNewAccount(a *types.SocialAccount, now time.Time) error {
	if strings.TrimSpace(a.UserID) == "" {
		return &ValidationError{Field: "userId", Message: "required"}
	}
	if strings.TrimSpace(a.Platform) == "" {
		return &ValidationError{Field: "platform", Message: "required"}
	}
	if strings.TrimSpace(a.Username) == "" {
		return &ValidationError{Field: "username", Message: "required"}
	}
	if strings.TrimSpace(a.AccessToken) == "" {
		return &ValidationError{Field: "accessToken", Message: "required"}
	}
	if a.ConnectedAt.IsZero() {
		a.ConnectedAt = now
	}
	return nil
}

func validateAccountKey(userID, platform string) error {
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "userId", Message: "required"}
	}
	if strings.TrimSpace(platform) == "" {
		return &ValidationError{Field: "platform", Message: "required"}
	}
	return nil
}

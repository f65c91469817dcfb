package store

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/postloom/postloom/internal/types"
)

// Postgres is the relational adapter.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Init creates or migrates the schema. Safe to call on every start.
func (p *Postgres) Init(ctx context.Context) error {
	return p.db.WithContext(ctx).AutoMigrate(
		&types.Post{},
		&types.SocialAccount{},
		&types.Setting{},
	)
}

func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Postgres) FindAllPosts(ctx context.Context, userID string) ([]types.Post, error) {
	var posts []types.Post
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_time asc").
		Find(&posts).Error
	return posts, err
}

func (p *Postgres) FindPostByID(ctx context.Context, id uint64) (*types.Post, error) {
	var post types.Post
	if err := p.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &post, nil
}

func (p *Postgres) CreatePost(ctx context.Context, post *types.Post) error {
	if err := prepareNewPost(post, time.Now().UTC()); err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(post).Error
}

func (p *Postgres) UpdatePost(ctx context.Context, id uint64, upd PostUpdate) (*types.Post, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}
	var post types.Post
	if err := p.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if upd.Platform != nil {
		post.Platform = *upd.Platform
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.ScheduledTime != nil {
		post.ScheduledTime = *upd.ScheduledTime
	}
	if upd.Status != nil {
		post.Status = *upd.Status
	}
	post.UpdatedAt = time.Now().UTC()
	if err := p.db.WithContext(ctx).Save(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *Postgres) DeletePost(ctx context.Context, id uint64) error {
	res := p.db.WithContext(ctx).Delete(&types.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) FindAllSocialAccounts(ctx context.Context, userID string) ([]types.SocialAccount, error) {
	var accts []types.SocialAccount
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).Find(&accts).Error
	return accts, err
}

func (p *Postgres) FindSocialAccountByPlatform(ctx context.Context, userID, platform string) (*types.SocialAccount, error) {
	var acct types.SocialAccount
	err := p.db.WithContext(ctx).
		First(&acct, "user_id = ? AND platform = ?", userID, platform).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &acct, nil
}

func (p *Postgres) CreateSocialAccount(ctx context.Context, acct *types.SocialAccount) error {
	if err := prepareNewAccount(acct, time.Now().UTC()); err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(acct).Error
}

func (p *Postgres) UpdateSocialAccount(ctx context.Context, userID, platform string, upd AccountUpdate) (*types.SocialAccount, error) {
	if err := validateAccountKey(userID, platform); err != nil {
		return nil, err
	}
	if upd.empty() {
		return nil, &ValidationError{Field: "fields", Message: "no fields to update"}
	}

	values := map[string]interface{}{}
	if upd.Username != nil {
		values["username"] = *upd.Username
	}
	if upd.AccessToken != nil {
		values["access_token"] = *upd.AccessToken
	}
	if upd.RefreshToken != nil {
		values["refresh_token"] = *upd.RefreshToken
	}
	if upd.TokenExpiry != nil {
		values["token_expiry"] = *upd.TokenExpiry
	}
	if upd.Connected != nil {
		values["connected"] = *upd.Connected
	}
	if upd.ProfileData != nil {
		values["profile_data"] = *upd.ProfileData
	}

	res := p.db.WithContext(ctx).Model(&types.SocialAccount{}).
		Where("user_id = ? AND platform = ?", userID, platform).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return p.FindSocialAccountByPlatform(ctx, userID, platform)
}

// UpsertSocialAccount inserts or, on a (user_id, platform) conflict,
// overwrites the existing row in a single statement so two concurrent
// connects cannot both insert.
func (p *Postgres) UpsertSocialAccount(ctx context.Context, acct *types.SocialAccount) (*types.SocialAccount, error) {
	if err := prepareNewAccount(acct, time.Now().UTC()); err != nil {
		return nil, err
	}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "access_token", "refresh_token",
			"token_expiry", "connected", "connected_at", "profile_data",
		}),
	}).Create(acct).Error
	if err != nil {
		return nil, err
	}
	return p.FindSocialAccountByPlatform(ctx, acct.UserID, acct.Platform)
}

func (p *Postgres) DeleteSocialAccount(ctx context.Context, userID, platform string) error {
	res := p.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		Delete(&types.SocialAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Settings(ctx context.Context) ([]types.Setting, error) {
	var settings []types.Setting
	err := p.db.WithContext(ctx).Find(&settings).Error
	return settings, err
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package types

import "time"

// Post statuses
const (
	StatusDraft         = "draft"
	StatusScheduled     = "scheduled"
	StatusPublished     = "published"
	StatusNeedsApproval = "needs_approval"
	StatusReady         = "ready"
)

// ValidStatus reports whether s is one of the recognized post statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusNeedsApproval, StatusReady:
		return true
	}
	return false
}

// Platforms with an OAuth connect flow.
var KnownPlatforms = []string{"Twitter", "LinkedIn", "Instagram", "Facebook"}

// Scheduled unit of social media content
type Post struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"size:64;index;not null" json:"userId"`
	Platform      string    `gorm:"size:32;not null" json:"platform"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ScheduledTime time.Time `gorm:"index;not null" json:"scheduledTime"`
	Status        string    `gorm:"size:32;not null;default:draft" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Connection between a user and one external platform. At most one row
// per (user_id, platform); disconnecting flips Connected instead of
// deleting so a reconnect reuses the same row.
type SocialAccount struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"size:64;uniqueIndex:idx_user_platform;not null" json:"userId"`
	Platform     string     `gorm:"size:32;uniqueIndex:idx_user_platform;not null" json:"platform"`
	Username     string     `gorm:"size:128;not null" json:"username"`
	AccessToken  string     `gorm:"size:512;not null" json:"accessToken"`
	RefreshToken *string    `gorm:"size:512" json:"refreshToken,omitempty"`
	TokenExpiry  *time.Time `json:"tokenExpiry,omitempty"`
	Connected    bool       `gorm:"not null;default:true" json:"connected"`
	ConnectedAt  time.Time  `gorm:"not null" json:"connectedAt"`
	ProfileData  string     `gorm:"type:text" json:"profileData,omitempty"`
}

// Settings
type Setting struct {
	ID    uint32 `gorm:"primaryKey"`
	Name  string `gorm:"size:64;unique;not null"`
	Value string `gorm:"size:512;not null"`
}

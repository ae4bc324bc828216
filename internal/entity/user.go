package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          *string    `gorm:"size:100" json:"name,omitempty"`
	Email         *string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	Image         *string    `gorm:"type:text" json:"image,omitempty"`
	Username      *string    `gorm:"size:50;uniqueIndex" json:"username,omitempty"`
	Bio           *string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Following []*User   `gorm:"many2many:user_follows;joinForeignKey:FollowerID;joinReferences:FollowingID" json:"-"`
	Followers []*User   `gorm:"many2many:user_follows;joinForeignKey:FollowingID;joinReferences:FollowerID" json:"-"`
	Accounts  []Account `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Sessions  []Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Chats     []*Chat   `gorm:"many2many:chat_participants" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayUsername returns the username or an empty string.
func (u *User) DisplayUsername() string {
	if u == nil || u.Username == nil {
		return ""
	}
	return *u.Username
}

// Follow is the user_follows join row: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (Follow) TableName() string {
	return "user_follows"
}

const ProviderCredentials = "credentials"

type Account struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type              string    `gorm:"size:50;not null" json:"type"`
	Provider          string    `gorm:"size:50;not null;uniqueIndex:idx_accounts_provider" json:"provider"`
	ProviderAccountID string    `gorm:"size:255;not null;uniqueIndex:idx_accounts_provider" json:"provider_account_id"`
	PasswordHash      *string   `gorm:"size:255" json:"-"`
	RefreshToken      *string   `gorm:"type:text" json:"-"`
	AccessToken       *string   `gorm:"type:text" json:"-"`
	ExpiresAt         *int64    `json:"-"`
	TokenType         *string   `gorm:"size:50" json:"-"`
	Scope             *string   `gorm:"type:text" json:"-"`
	IDToken           *string   `gorm:"type:text" json:"-"`
	SessionState      *string   `gorm:"size:255" json:"-"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type Session struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionToken string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Expires      time.Time `gorm:"not null" json:"expires"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

type VerificationToken struct {
	Identifier string    `gorm:"size:255;not null;uniqueIndex:idx_verification_identifier_token"`
	Token      string    `gorm:"size:255;not null;uniqueIndex;uniqueIndex:idx_verification_identifier_token"`
	Expires    time.Time `gorm:"not null"`
}

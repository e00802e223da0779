package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is both a seller and a bidder; KYC and terms acceptance gate bidding.
type User struct {
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname        string         `gorm:"column:fullname;not null" json:"fullname"`
	Email           string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash    string         `gorm:"column:password_hash;not null" json:"-"`
	Role            string         `gorm:"column:role;not null;default:member" json:"role"`
	KycVerified     bool           `gorm:"column:kyc_verified;not null;default:false" json:"kyc_verified"`
	TermsAcceptedAt *time.Time     `gorm:"column:terms_accepted_at" json:"terms_accepted_at"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 内部用户模型：认证由外部身份服务完成，这里只存影子记录，
// 以 email 作为与外部身份的关联键.
type User struct {
	ID    string `gorm:"type:uuid;primaryKey"        json:"id"`
	Email string `gorm:"size:255;uniqueIndex"        json:"email"`

	FirstName string `gorm:"size:128" json:"first_name"`
	LastName  string `gorm:"size:128" json:"last_name"`
	// 外部 OAuth 用户没有本地口令，占位存 "oauth_user"
	HashedPassword string `gorm:"size:255" json:"-"`
	Role           string `gorm:"size:64;default:user"     json:"role"`
	Plan           string `gorm:"size:64;default:freemium" json:"plan"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate 补齐主键.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	return nil
}

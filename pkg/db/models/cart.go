package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukahub/dukahub-backend/pkg/enums"
)

// Cart holds the open basket for either a logged-in user or a guest session.
// Exactly one of UserID and SessionID is set; a partial unique index keeps at
// most one open cart per owner.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID       `gorm:"column:user_id;type:uuid"`
	SessionID *string          `gorm:"column:session_id"`
	Status    enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'open'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsGuest reports whether the cart belongs to an anonymous session.
func (c *Cart) IsGuest() bool {
	return c.UserID == nil
}

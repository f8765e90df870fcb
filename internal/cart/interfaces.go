package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
)

// Owner identifies who a cart belongs to. Exactly one of UserID and SessionID
// must be set.
type Owner struct {
	UserID    *uuid.UUID
	SessionID *string
}

// IsGuest reports whether the owner is an anonymous session.
func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// IsZero reports whether neither identity is present.
func (o Owner) IsZero() bool {
	return o.UserID == nil && (o.SessionID == nil || *o.SessionID == "")
}

// UserOwner builds an Owner for a logged-in user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner builds an Owner for a guest session.
func GuestOwner(sessionID string) Owner {
	return Owner{SessionID: &sessionID}
}

// CartRepository defines persistence operations for carts and their items.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository

	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindOpenByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	ReparentItem(ctx context.Context, itemID, newCartID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/dukahub/dukahub-backend/pkg/db"
	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
)

// Service exposes cart operations for both guests and logged-in users.
type Service interface {
	GetOrCreateOpenCart(ctx context.Context, owner Owner) (*View, error)
	AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error)
	UpdateItemQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error)
	SetStatus(ctx context.Context, owner Owner, status enums.CartStatus) (*View, error)
	DeleteCart(ctx context.Context, owner Owner) error
	MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// GetOrCreateOpenCart returns the owner's open cart, creating one when none
// exists. A concurrent create losing the race against the partial unique index
// falls back to re-reading the winner's row.
func (s *service) GetOrCreateOpenCart(ctx context.Context, owner Owner) (*View, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	cart, err := s.getOrCreateOpen(ctx, s.repo, owner)
	if err != nil {
		return nil, err
	}
	return BuildView(cart), nil
}

func (s *service) getOrCreateOpen(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	cart, err := repo.FindOpenByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
	}

	created, createErr := repo.Create(ctx, &models.Cart{
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		Status:    enums.CartStatusOpen,
	})
	if createErr == nil {
		return created, nil
	}
	if dbpkg.IsUniqueViolation(createErr, "") {
		// Lost the race; another request created the open cart first.
		cart, err = repo.FindOpenByOwner(ctx, owner)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "re-reading open cart")
		}
		return cart, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, createErr, "creating cart")
}

// AddItem adds quantity units of the product to the owner's open cart. When a
// line for the product already exists, quantities are summed.
func (s *service) AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	var cartID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.getOrCreateOpen(ctx, repo, owner)
		if err != nil {
			return err
		}
		cartID = cart.ID

		existing, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
			}
			_, err = repo.CreateItem(ctx, &models.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				LineTotal: product.Price.Mul(decimalFromInt(quantity)),
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart item")
			}
			return nil
		}

		existing.Quantity += quantity
		existing.LineTotal = product.Price.Mul(decimalFromInt(existing.Quantity))
		if _, err := repo.UpdateItem(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.viewByID(ctx, cartID)
}

// UpdateItemQuantity sets the line quantity for the product. Quantity zero
// removes the line.
func (s *service) UpdateItemQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, owner, productID)
	}

	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	cart, err := s.repo.FindOpenByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}

	item.Quantity = quantity
	item.LineTotal = product.Price.Mul(decimalFromInt(quantity))
	if _, err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
	}

	return s.viewByID(ctx, cart.ID)
}

// RemoveItem deletes the product line from the owner's open cart.
func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	cart, err := s.repo.FindOpenByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
	}

	if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}

	return s.viewByID(ctx, cart.ID)
}

// SetStatus updates the open cart's status. Closing a cart leaves its items in
// place; a later GetOrCreateOpenCart starts a fresh one.
func (s *service) SetStatus(ctx context.Context, owner Owner, status enums.CartStatus) (*View, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown cart status")
	}

	cart, err := s.repo.FindOpenByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
	}

	if cart.Status != status {
		if err := s.repo.UpdateStatus(ctx, cart.ID, status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart status")
		}
	}

	return s.viewByID(ctx, cart.ID)
}

// DeleteCart removes the owner's open cart and all of its items.
func (s *service) DeleteCart(ctx context.Context, owner Owner) error {
	if err := validateOwner(owner); err != nil {
		return err
	}

	cart, err := s.repo.FindOpenByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
	}

	if err := s.repo.Delete(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart")
	}
	return nil
}

func (s *service) viewByID(ctx context.Context, cartID uuid.UUID) (*View, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading cart")
	}
	return BuildView(cart), nil
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

func validateOwner(owner Owner) error {
	if owner.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if owner.UserID != nil && owner.SessionID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner must be a user or a session, not both")
	}
	return nil
}

package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
)

// MergeGuestCart folds the guest session's open cart into the user's open
// cart. Duplicate product lines have their quantities summed; lines for
// products the user doesn't have yet are re-parented wholesale. The guest cart
// is deleted at the end. A missing guest cart is a no-op so login never fails
// because of merge state.
func (s *service) MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		guestCart, err := repo.FindOpenByOwner(ctx, GuestOwner(sessionID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading guest cart")
		}

		userCart, err := s.getOrCreateOpen(ctx, repo, UserOwner(userID))
		if err != nil {
			return err
		}

		guestItems, err := repo.ListItems(ctx, guestCart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing guest cart items")
		}

		for i := range guestItems {
			guestItem := &guestItems[i]

			existing, err := repo.FindItem(ctx, userCart.ID, guestItem.ProductID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user cart item")
				}
				if err := repo.ReparentItem(ctx, guestItem.ID, userCart.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "moving guest cart item")
				}
				continue
			}

			existing.Quantity += guestItem.Quantity
			if guestItem.Product != nil {
				existing.LineTotal = guestItem.Product.Price.Mul(decimalFromInt(existing.Quantity))
			} else {
				existing.LineTotal = existing.LineTotal.Add(guestItem.LineTotal)
			}
			if _, err := repo.UpdateItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merging cart item quantities")
			}
			if err := repo.DeleteItem(ctx, guestCart.ID, guestItem.ProductID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing merged guest item")
			}
		}

		if err := repo.Delete(ctx, guestCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting guest cart")
		}
		return nil
	})
}

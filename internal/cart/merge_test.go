package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukahub/dukahub-backend/pkg/enums"
)

func TestMergeGuestCartSumsDuplicates(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	shared := seedProduct(repo, "100.00", 50)
	guestOnly := seedProduct(repo, "25.00", 50)
	userID := uuid.New()

	guest := GuestOwner("sess-merge")
	_, err := svc.AddItem(ctx, guest, shared.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, guestOnly.ID, 1)
	require.NoError(t, err)

	user := UserOwner(userID)
	_, err = svc.AddItem(ctx, user, shared.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.MergeGuestCart(ctx, "sess-merge", userID))

	view, err := svc.GetOrCreateOpenCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	byProduct := map[uuid.UUID]ItemView{}
	for _, item := range view.Items {
		byProduct[item.ProductID] = item
	}
	assert.Equal(t, 5, byProduct[shared.ID].Quantity)
	assert.True(t, byProduct[shared.ID].LineTotal.Equal(decimal.RequireFromString("500.00")),
		"line total %s", byProduct[shared.ID].LineTotal)
	assert.Equal(t, 1, byProduct[guestOnly.ID].Quantity)

	// Guest cart must be gone; the next lookup creates a fresh empty one.
	fresh, err := svc.GetOrCreateOpenCart(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, fresh.Items)
}

func TestMergeGuestCartCreatesUserCartWhenMissing(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	product := seedProduct(repo, "75.00", 10)
	userID := uuid.New()

	_, err := svc.AddItem(ctx, GuestOwner("sess-new"), product.ID, 4)
	require.NoError(t, err)

	require.NoError(t, svc.MergeGuestCart(ctx, "sess-new", userID))

	view, err := svc.GetOrCreateOpenCart(ctx, UserOwner(userID))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
	assert.Equal(t, enums.CartStatusOpen, view.Status)
}

func TestMergeGuestCartNoGuestCartIsNoop(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)

	err := svc.MergeGuestCart(context.Background(), "sess-none", uuid.New())
	require.NoError(t, err)
	assert.Empty(t, repo.carts)
}

func TestMergeGuestCartValidation(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	require.Error(t, svc.MergeGuestCart(ctx, "", uuid.New()))
	require.Error(t, svc.MergeGuestCart(ctx, "sess", uuid.Nil))
}

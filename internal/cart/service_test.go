package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
)

type stubCartRepo struct {
	carts    map[uuid.UUID]*models.Cart
	items    map[uuid.UUID]*models.CartItem
	products map[uuid.UUID]*models.Product
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		carts:    make(map[uuid.UUID]*models.Cart),
		items:    make(map[uuid.UUID]*models.CartItem),
		products: make(map[uuid.UUID]*models.Product),
	}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository {
	return s
}

func (s *stubCartRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.Status == "" {
		cart.Status = enums.CartStatusOpen
	}
	stored := *cart
	s.carts[cart.ID] = &stored
	return cart, nil
}

func (s *stubCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, ok := s.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *cart
	out.Items = s.itemsFor(id)
	return &out, nil
}

func (s *stubCartRepo) FindOpenByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	for _, cart := range s.carts {
		if cart.Status != enums.CartStatusOpen {
			continue
		}
		if owner.UserID != nil && cart.UserID != nil && *cart.UserID == *owner.UserID {
			out := *cart
			out.Items = s.itemsFor(cart.ID)
			return &out, nil
		}
		if owner.SessionID != nil && cart.SessionID != nil && *cart.SessionID == *owner.SessionID {
			out := *cart
			out.Items = s.itemsFor(cart.ID)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	cart, ok := s.carts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.Status = status
	return nil
}

func (s *stubCartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for itemID, item := range s.items {
		if item.CartID == id {
			delete(s.items, itemID)
		}
	}
	delete(s.carts, id)
	return nil
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	stored := *item
	s.items[item.ID] = &stored
	return item, nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	for _, item := range s.items {
		if item.CartID == cartID && item.ProductID == productID {
			out := *item
			out.Product = s.products[item.ProductID]
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if _, ok := s.items[item.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	stored := *item
	stored.Product = nil
	s.items[item.ID] = &stored
	return item, nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	for itemID, item := range s.items {
		if item.CartID == cartID && item.ProductID == productID {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *stubCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	return s.itemsFor(cartID), nil
}

func (s *stubCartRepo) ReparentItem(ctx context.Context, itemID, newCartID uuid.UUID) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CartID = newCartID
	return nil
}

func (s *stubCartRepo) itemsFor(cartID uuid.UUID) []models.CartItem {
	var out []models.CartItem
	for _, item := range s.items {
		if item.CartID == cartID {
			copied := *item
			copied.Product = s.products[item.ProductID]
			out = append(out, copied)
		}
	}
	return out
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func newTestService(t *testing.T, repo *stubCartRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, &stubProductLoader{products: repo.products})
	require.NoError(t, err)
	return svc
}

func seedProduct(repo *stubCartRepo, price string, stock int) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "test product",
		Price:    decimal.RequireFromString(price),
		StockQty: stock,
		IsActive: true,
	}
	repo.products[product.ID] = product
	return product
}

func TestGetOrCreateOpenCartIsIdempotent(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.GetOrCreateOpenCart(ctx, UserOwner(userID))
	require.NoError(t, err)
	second, err := svc.GetOrCreateOpenCart(ctx, UserOwner(userID))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, enums.CartStatusOpen, first.Status)
	assert.Len(t, repo.carts, 1)
}

func TestAddItemSumsDuplicateLines(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	product := seedProduct(repo, "150.00", 10)
	owner := GuestOwner("sess-1")

	view, err := svc.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)

	view, err = svc.AddItem(ctx, owner, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.True(t, view.Items[0].LineTotal.Equal(decimal.RequireFromString("750.00")),
		"line total %s", view.Items[0].LineTotal)
	assert.True(t, view.GrandTotal.Equal(decimal.RequireFromString("750.00")))
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	product := seedProduct(repo, "100.00", 5)
	product.IsActive = false

	_, err := svc.AddItem(context.Background(), UserOwner(uuid.New()), product.ID, 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddItemUnknownProduct(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)

	_, err := svc.AddItem(context.Background(), UserOwner(uuid.New()), uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	product := seedProduct(repo, "99.50", 10)
	owner := UserOwner(uuid.New())

	_, err := svc.AddItem(ctx, owner, product.ID, 4)
	require.NoError(t, err)

	view, err := svc.UpdateItemQuantity(ctx, owner, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.GrandTotal.IsZero())
}

func TestUpdateItemQuantityRecalculatesLineTotal(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	product := seedProduct(repo, "40.00", 10)
	owner := UserOwner(uuid.New())

	_, err := svc.AddItem(ctx, owner, product.ID, 1)
	require.NoError(t, err)

	view, err := svc.UpdateItemQuantity(ctx, owner, product.ID, 7)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 7, view.Items[0].Quantity)
	assert.True(t, view.Items[0].LineTotal.Equal(decimal.RequireFromString("280.00")))
}

func TestOwnerValidation(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)

	_, err := svc.GetOrCreateOpenCart(context.Background(), Owner{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSetStatusClosesCart(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	owner := UserOwner(uuid.New())

	opened, err := svc.GetOrCreateOpenCart(ctx, owner)
	require.NoError(t, err)

	closed, err := svc.SetStatus(ctx, owner, enums.CartStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, closed.ID)
	assert.Equal(t, enums.CartStatusClosed, closed.Status)

	// A fresh open cart starts once the previous one is closed.
	next, err := svc.GetOrCreateOpenCart(ctx, owner)
	require.NoError(t, err)
	assert.NotEqual(t, opened.ID, next.ID)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)

	_, err := svc.SetStatus(context.Background(), UserOwner(uuid.New()), enums.CartStatus("archived"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDeleteCartRemovesItems(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	product := seedProduct(repo, "120.00", 8)
	owner := GuestOwner("sess-del")

	_, err := svc.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCart(ctx, owner))
	assert.Empty(t, repo.carts)
	assert.Empty(t, repo.items)
}

func TestDeleteCartWithoutOpenCart(t *testing.T) {
	repo := newStubCartRepo()
	svc := newTestService(t, repo)

	err := svc.DeleteCart(context.Background(), GuestOwner("sess-missing"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

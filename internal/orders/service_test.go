package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
	"github.com/dukahub/dukahub-backend/pkg/outbox"
	"github.com/dukahub/dukahub-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	s.orders[order.ID] = &stored
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (s *stubOrdersRepo) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	return invoice, nil
}

func (s *stubOrdersRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	return payment, nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *order
	return &out, nil
}

func (s *stubOrdersRepo) FindOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *order
	return &out, nil
}

func (s *stubOrdersRepo) FindInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListUserOrders(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (s *stubOrdersRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (s *stubOrdersRepo) UpdateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	return invoice, nil
}

func (s *stubOrdersRepo) UpdatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	return payment, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func seedOrder(repo *stubOrdersRepo, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CartID:    uuid.New(),
		Status:    status,
		CreatedAt: time.Now(),
	}
	repo.orders[order.ID] = order
	return order
}

func TestTransitionAllowedMove(t *testing.T) {
	repo := newStubOrdersRepo()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, ob)
	require.NoError(t, err)

	order := seedOrder(repo, enums.OrderStatusPaid)

	dto, err := svc.Transition(context.Background(), order.ID, enums.OrderStatusDispatched, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDispatched, dto.Status)
	assert.Equal(t, enums.OrderStatusDispatched, repo.orders[order.ID].Status)

	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventOrderStatusChanged, ob.events[0].EventType)
	assert.Equal(t, order.ID, ob.events[0].AggregateID)
}

func TestTransitionDisallowedCarriesAllowedSet(t *testing.T) {
	repo := newStubOrdersRepo()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, ob)
	require.NoError(t, err)

	order := seedOrder(repo, enums.OrderStatusDelivered)

	_, err = svc.Transition(context.Background(), order.ID, enums.OrderStatusCancelled, nil)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, enums.OrderStatusDelivered, details["current_status"])
	assert.Empty(t, details["allowed_statuses"])

	// No event, no status change.
	assert.Empty(t, ob.events)
	assert.Equal(t, enums.OrderStatusDelivered, repo.orders[order.ID].Status)
}

func TestTransitionUnknownStatus(t *testing.T) {
	repo := newStubOrdersRepo()
	svc, err := NewService(repo, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), uuid.New(), enums.OrderStatus("shipped"), nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestTransitionOrderNotFound(t *testing.T) {
	repo := newStubOrdersRepo()
	svc, err := NewService(repo, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), uuid.New(), enums.OrderStatusPaid, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetUserOrderScopesToOwner(t *testing.T) {
	repo := newStubOrdersRepo()
	svc, err := NewService(repo, stubTxRunner{}, &stubOutbox{})
	require.NoError(t, err)

	order := seedOrder(repo, enums.OrderStatusPending)

	dto, err := svc.GetUserOrder(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, dto.ID)

	_, err = svc.GetUserOrder(context.Background(), order.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	"github.com/dukahub/dukahub-backend/pkg/outbox"
	"github.com/dukahub/dukahub-backend/pkg/pagination"
)

// Repository defines persistence operations for orders, invoices and payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindInvoiceByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Order, error)

	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	UpdateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

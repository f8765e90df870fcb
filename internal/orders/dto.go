package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
)

// ItemDTO is the client projection of an order line snapshot.
type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	SubTotal    decimal.Decimal `json:"sub_total"`
}

// InvoiceDTO is the client projection of an invoice.
type InvoiceDTO struct {
	ID            uuid.UUID           `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	Payments      []PaymentDTO        `json:"payments,omitempty"`
}

// PaymentDTO is the client projection of a settlement attempt.
type PaymentDTO struct {
	ID            uuid.UUID           `json:"id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	TransactionID string              `json:"transaction_id"`
	Status        enums.PaymentStatus `json:"status"`
}

// OrderDTO is the client projection of an order.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Status      enums.OrderStatus `json:"status"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	ShippingFee decimal.Decimal   `json:"shipping_fee"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []ItemDTO         `json:"items"`
	Invoice     *InvoiceDTO       `json:"invoice,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OrderList holds a page of orders plus the cursor for the next page.
type OrderList struct {
	Items      []OrderDTO `json:"items"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// ToDTO converts a loaded order model.
func ToDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		TotalAmount: order.TotalAmount,
		Items:       make([]ItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		entry := ItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			SubTotal:  item.SubTotal,
		}
		if item.Product != nil {
			entry.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, entry)
	}
	if order.Invoice != nil {
		invoice := &InvoiceDTO{
			ID:            order.Invoice.ID,
			InvoiceNumber: order.Invoice.InvoiceNumber,
			Amount:        order.Invoice.Amount,
			PaymentStatus: order.Invoice.PaymentStatus,
			PaidAt:        order.Invoice.PaidAt,
		}
		for i := range order.Invoice.Payments {
			p := &order.Invoice.Payments[i]
			invoice.Payments = append(invoice.Payments, PaymentDTO{
				ID:            p.ID,
				PaymentMethod: p.PaymentMethod,
				Amount:        p.Amount,
				TransactionID: p.TransactionID,
				Status:        p.Status,
			})
		}
		dto.Invoice = invoice
	}
	return dto
}

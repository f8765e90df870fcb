package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/internal/cart"
	"github.com/dukahub/dukahub-backend/internal/catalog"
	"github.com/dukahub/dukahub-backend/internal/orders"
	"github.com/dukahub/dukahub-backend/pkg/config"
	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
	"github.com/dukahub/dukahub-backend/pkg/outbox"
	"github.com/dukahub/dukahub-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// QuoteDTO is the read-only totals preview for the open cart.
type QuoteDTO struct {
	CartID      uuid.UUID       `json:"cart_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Result summarizes a confirmed checkout.
type Result struct {
	Order         *orders.OrderDTO    `json:"order"`
	InvoiceNumber string              `json:"invoice_number"`
	TransactionID string              `json:"transaction_id"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}

// Service runs the checkout pipeline.
type Service interface {
	Quote(ctx context.Context, userID uuid.UUID) (*QuoteDTO, error)
	ProcessCheckout(ctx context.Context, userID uuid.UUID, method enums.PaymentMethod) (*Result, error)
}

type service struct {
	carts    cart.CartRepository
	products catalog.Repository
	orders   orders.Repository
	tx       txRunner
	outbox   outboxPublisher
	cfg      config.CheckoutConfig
	now      func() time.Time
}

// NewService builds a checkout service with the required stack.
func NewService(
	carts cart.CartRepository,
	products catalog.Repository,
	ordersRepo orders.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	cfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if _, err := cfg.ShippingFeeAmount(); err != nil {
		return nil, fmt.Errorf("invalid shipping fee: %w", err)
	}
	if _, err := cfg.FreeShippingThresholdAmount(); err != nil {
		return nil, fmt.Errorf("invalid free shipping threshold: %w", err)
	}
	return &service{
		carts:    carts,
		products: products,
		orders:   ordersRepo,
		tx:       tx,
		outbox:   outboxSvc,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// ShippingFee applies the flat-rate rule: orders under the threshold pay the
// configured fee, larger orders ship free.
func (s *service) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	threshold, _ := s.cfg.FreeShippingThresholdAmount()
	fee, _ := s.cfg.ShippingFeeAmount()
	if subtotal.LessThan(threshold) {
		return fee
	}
	return decimal.Zero
}

func (s *service) Quote(ctx context.Context, userID uuid.UUID) (*QuoteDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	openCart, err := s.carts.FindOpenByOwner(ctx, cart.UserOwner(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
	}
	if len(openCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal, _, err := s.priceItems(ctx, s.products, openCart.Items)
	if err != nil {
		return nil, err
	}
	shipping := s.ShippingFee(subtotal)

	return &QuoteDTO{
		CartID:      openCart.ID,
		Subtotal:    subtotal,
		ShippingFee: shipping,
		TotalAmount: subtotal.Add(shipping),
	}, nil
}

// ProcessCheckout converts the user's open cart into an order, invoice and
// payment inside a single transaction. Stock is taken with guarded decrements,
// so two checkouts racing for the last unit cannot both succeed; the loser
// rolls back with an insufficient-stock error and the cart stays open.
func (s *service) ProcessCheckout(ctx context.Context, userID uuid.UUID, method enums.PaymentMethod) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", method))
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		products := s.products.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		openCart, err := carts.FindOpenByOwner(ctx, cart.UserOwner(userID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading open cart")
		}
		if len(openCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		subtotal, lines, err := s.priceItems(ctx, products, openCart.Items)
		if err != nil {
			return err
		}

		// Take stock with guarded decrements. Any shortfall aborts the
		// whole transaction, undoing every decrement already applied.
		for _, line := range lines {
			ok, err := products.DecrementStock(ctx, line.product.ID, line.quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
			}
			if !ok {
				return pkgerrors.New(
					pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %s", line.product.Name),
				).WithDetails(map[string]any{
					"product_id": line.product.ID,
					"requested":  line.quantity,
					"available":  line.product.StockQty,
				})
			}
		}

		shipping := s.ShippingFee(subtotal)
		total := subtotal.Add(shipping)
		now := s.now()

		order, err := ordersRepo.CreateOrder(ctx, &models.Order{
			ID:          uuid.New(),
			UserID:      userID,
			CartID:      openCart.ID,
			Status:      enums.OrderStatusPending,
			Subtotal:    subtotal,
			ShippingFee: shipping,
			TotalAmount: total,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.product.ID,
				Quantity:  line.quantity,
				Price:     line.product.Price,
				SubTotal:  line.subTotal,
			})
		}
		if err := ordersRepo.CreateOrderItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order items")
		}

		if err := carts.UpdateStatus(ctx, openCart.ID, enums.CartStatusClosed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing cart")
		}

		invoice, err := ordersRepo.CreateInvoice(ctx, &models.Invoice{
			InvoiceNumber: InvoiceNumber(now, order.ID),
			OrderID:       order.ID,
			UserID:        userID,
			Amount:        total,
			PaymentStatus: enums.PaymentStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invoice")
		}

		payment := &models.Payment{
			InvoiceID:     invoice.ID,
			PaymentMethod: method,
			Amount:        total,
			TransactionID: TransactionID(now),
			Status:        enums.PaymentStatusPending,
		}

		settled := SettlesInstantly(method)
		if settled {
			payment.Status = enums.PaymentStatusPaid
		}
		if _, err := ordersRepo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
		}

		actor := &outbox.ActorRef{UserID: userID}
		createdEvent := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				UserID:        userID,
				InvoiceNumber: invoice.InvoiceNumber,
				TotalAmount:   total,
				PaymentMethod: method,
			},
		}
		if err := s.outbox.Emit(ctx, tx, createdEvent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing order created event")
		}

		if settled {
			paidAt := now
			invoice.PaymentStatus = enums.PaymentStatusPaid
			invoice.PaidAt = &paidAt
			if _, err := ordersRepo.UpdateInvoice(ctx, invoice); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling invoice")
			}
			if err := ordersRepo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order paid")
			}
			order.Status = enums.OrderStatusPaid

			paidEvent := outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actor,
				Version:       1,
				OccurredAt:    now,
				Data: payloads.OrderPaidEvent{
					OrderID:       order.ID,
					UserID:        userID,
					InvoiceNumber: invoice.InvoiceNumber,
					TransactionID: payment.TransactionID,
					Amount:        total,
					PaymentMethod: method,
					PaidAt:        paidAt,
				},
			}
			if err := s.outbox.Emit(ctx, tx, paidEvent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing order paid event")
			}
		}

		order.Items = orderItems
		order.Invoice = invoice
		result = &Result{
			Order:         orders.ToDTO(order),
			InvoiceNumber: invoice.InvoiceNumber,
			TransactionID: payment.TransactionID,
			PaymentStatus: payment.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type pricedLine struct {
	product  *models.Product
	quantity int
	subTotal decimal.Decimal
}

// priceItems loads current product rows and computes line subtotals from
// current prices, not the stale cart line totals.
func (s *service) priceItems(ctx context.Context, products catalog.Repository, items []models.CartItem) (decimal.Decimal, []pricedLine, error) {
	subtotal := decimal.Zero
	lines := make([]pricedLine, 0, len(items))
	for i := range items {
		item := &items[i]
		product, err := products.FindProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references a missing product")
			}
			return decimal.Zero, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		subTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(subTotal)
		lines = append(lines, pricedLine{
			product:  product,
			quantity: item.Quantity,
			subTotal: subTotal,
		})
	}
	return subtotal, lines, nil
}

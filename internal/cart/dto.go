package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
)

// ItemView is the client projection of a cart line.
type ItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// View is the client projection of a cart with its computed totals.
type View struct {
	ID         uuid.UUID        `json:"id"`
	UserID     *uuid.UUID       `json:"user_id,omitempty"`
	SessionID  *string          `json:"session_id,omitempty"`
	Status     enums.CartStatus `json:"status"`
	Items      []ItemView       `json:"items"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
	CreatedAt  time.Time        `json:"created_at"`
}

// BuildView assembles the view from a loaded cart. Line totals come from the
// stored rows; the grand total is recomputed as their sum.
func BuildView(cart *models.Cart) *View {
	if cart == nil {
		return nil
	}
	view := &View{
		ID:         cart.ID,
		UserID:     cart.UserID,
		SessionID:  cart.SessionID,
		Status:     cart.Status,
		Items:      make([]ItemView, 0, len(cart.Items)),
		GrandTotal: decimal.Zero,
		CreatedAt:  cart.CreatedAt,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		iv := ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		}
		if item.Product != nil {
			iv.ProductName = item.Product.Name
			iv.UnitPrice = item.Product.Price
		}
		view.Items = append(view.Items, iv)
		view.GrandTotal = view.GrandTotal.Add(item.LineTotal)
	}
	return view
}

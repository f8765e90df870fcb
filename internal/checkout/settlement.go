package checkout

import "github.com/dukahub/dukahub-backend/pkg/enums"

// SettlesInstantly reports whether the payment method clears at checkout time.
// Cash and vouchers settle later (on delivery or redemption), everything
// electronic settles immediately in the simulated flow.
func SettlesInstantly(method enums.PaymentMethod) bool {
	switch method {
	case enums.PaymentMethodMpesa, enums.PaymentMethodCreditCard, enums.PaymentMethodDebitCard:
		return true
	default:
		return false
	}
}

package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukahub/dukahub-backend/pkg/enums"
)

func TestSettlesInstantly(t *testing.T) {
	cases := map[enums.PaymentMethod]bool{
		enums.PaymentMethodMpesa:      true,
		enums.PaymentMethodCreditCard: true,
		enums.PaymentMethodDebitCard:  true,
		enums.PaymentMethodCash:       false,
		enums.PaymentMethodVoucher:    false,
	}
	for method, want := range cases {
		assert.Equal(t, want, SettlesInstantly(method), "method %s", method)
	}
}

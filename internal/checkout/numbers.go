package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceNumber derives the human-facing invoice identifier from the order id
// and the billing date.
func InvoiceNumber(now time.Time, orderID uuid.UUID) string {
	short := strings.ReplaceAll(orderID.String(), "-", "")[:8]
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), short)
}

// TransactionID generates a settlement reference unique per attempt.
func TransactionID(now time.Time) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102150405"), short)
}

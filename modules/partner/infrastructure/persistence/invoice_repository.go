package persistence

import (
	"context"
	"time"

	"github.com/acacia-erp/acacia-sdk/modules/partner/services"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
)

// InvoiceRepository reads the customer invoices that back the night-to-pay
// campaign: non-cancelled outgoing invoices dated on the delivery day with a
// residual still owed. Invoices are written by the billing side; this module
// only aggregates them.
type InvoiceRepository struct{}

func NewInvoiceRepository() services.DueInvoiceLister {
	return &InvoiceRepository{}
}

func (r *InvoiceRepository) ListDueInvoices(ctx context.Context, date time.Time) ([]services.DueInvoice, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT i.partner_id,
       p.name,
       COALESCE(NULLIF(p.phone, ''), p.mobile) AS phone,
       SUM(i.amount_total) AS amount_total
FROM invoices i
JOIN partners p ON p.id = i.partner_id
WHERE i.date_invoice = $1
  AND i.invoice_type = 'out_invoice'
  AND i.state != 'cancel'
GROUP BY i.partner_id, p.name, p.phone, p.mobile
HAVING SUM(i.residual) > 0
ORDER BY i.partner_id
`, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []services.DueInvoice
	for rows.Next() {
		var inv services.DueInvoice
		if err := rows.Scan(&inv.PartnerID, &inv.Name, &inv.Phone, &inv.AmountTotal); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

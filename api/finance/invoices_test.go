package finance

import (
	"testing"

	"FlowdeskSaas/api/constants"
)

func TestInvoiceTransitions(t *testing.T) {
	allowed := [][2]string{
		{constants.InvoiceDraft, constants.InvoiceSent},
		{constants.InvoiceSent, constants.InvoicePaid},
		{constants.InvoiceSent, constants.InvoiceOverdue},
		{constants.InvoiceOverdue, constants.InvoicePaid},
	}
	for _, c := range allowed {
		if !invoiceTransitionAllowed(c[0], c[1]) {
			t.Errorf("transition %s -> %s must be allowed", c[0], c[1])
		}
	}

	rejected := [][2]string{
		{constants.InvoiceDraft, constants.InvoicePaid},
		{constants.InvoicePaid, constants.InvoiceSent},
		{constants.InvoicePaid, constants.InvoiceOverdue},
		{constants.InvoiceOverdue, constants.InvoiceSent},
	}
	for _, c := range rejected {
		if invoiceTransitionAllowed(c[0], c[1]) {
			t.Errorf("transition %s -> %s must be rejected", c[0], c[1])
		}
	}
}

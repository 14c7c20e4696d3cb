package service

import (
	"errors"
)

var ErrInvalidTerms = errors.New("invalid commercial terms")

// Totals is the computed cost of a review request. All amounts in paise.
type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	GSTAmount  int64 `json:"gst_amount"`
	GrandTotal int64 `json:"grand_total"`
	CGST       int64 `json:"cgst"`
	SGST       int64 `json:"sgst"`
	IGST       int64 `json:"igst"`
}

// ComputeTotals derives the request cost from its terms:
//
//	subtotal    = (price + commission) * reviewsNeeded
//	gst         = subtotal * ratePercent / 100   (rounded half up)
//	grand total = subtotal + gst
//
// intraState splits GST evenly into CGST+SGST, otherwise it is all IGST.
// The computation is pure, so repeated invocations with the same terms
// always agree.
func ComputeTotals(price, commission int64, reviewsNeeded, gstRatePercent int, intraState bool) (*Totals, error) {
	if price <= 0 || commission < 0 || reviewsNeeded <= 0 || gstRatePercent < 0 {
		return nil, ErrInvalidTerms
	}

	subtotal := (price + commission) * int64(reviewsNeeded)
	gst := (subtotal*int64(gstRatePercent) + 50) / 100

	t := &Totals{
		Subtotal:   subtotal,
		GSTAmount:  gst,
		GrandTotal: subtotal + gst,
	}

	if intraState {
		t.CGST = gst / 2
		t.SGST = gst - t.CGST
	} else {
		t.IGST = gst
	}

	return t, nil
}

package receipt

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TypeExpense is the transaction type of every receipt-derived draft.
const TypeExpense = "expense"

// Fixed heuristic confidences. They only order rows for review.
const (
	amountConfidence      = 0.9
	descriptionConfidence = 0.8
	dateConfidence        = 0.7
)

// Confidence holds per-field scores in [0,1].
type Confidence struct {
	Amount      float64 `json:"amount"`
	Description float64 `json:"description"`
	Date        float64 `json:"date"`
}

// Draft is an unpersisted transaction proposed from a receipt line.
type Draft struct {
	Type        string
	Date        *string
	Description string
	Amount      decimal.Decimal
	Confidence  Confidence
}

// MarshalJSON renders Amount as a JSON number with two decimals.
func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string      `json:"type"`
		Date        *string     `json:"date"`
		Description string      `json:"description"`
		Amount      json.Number `json:"amount"`
		Confidence  Confidence  `json:"confidence"`
	}{
		Type:        d.Type,
		Date:        d.Date,
		Description: d.Description,
		Amount:      json.Number(d.Amount.StringFixed(2)),
		Confidence:  d.Confidence,
	})
}

// ToDrafts maps every parsed item to an expense draft sharing the receipt date.
func ToDrafts(r Result) []Draft {
	conf := Confidence{Amount: amountConfidence, Description: descriptionConfidence}
	if r.Date != nil {
		conf.Date = dateConfidence
	}
	out := make([]Draft, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, Draft{
			Type:        TypeExpense,
			Date:        r.Date,
			Description: it.Name,
			Amount:      it.Price.Round(2),
			Confidence:  conf,
		})
	}
	return out
}

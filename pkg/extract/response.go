package extract

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"pfa/pkg/money"
	"pfa/pkg/receipt"
)

// Response is the body returned for one extracted receipt.
type Response struct {
	Transactions []receipt.Draft `json:"transactions"`
	RawJSON      string          `json:"raw_json"`
	Diagnostics  Diagnostics     `json:"diagnostics"`
}

// Diagnostics summarises what the parser found.
type Diagnostics struct {
	Source       string       `json:"source"`
	DateDetected bool         `json:"date_detected"`
	Items        int          `json:"items"`
	Total        *json.Number `json:"total"`
	Engine       string       `json:"-"`
}

// TotalMinor returns the detected total in minor units.
func (d Diagnostics) TotalMinor() *int64 {
	if d.Total == nil {
		return nil
	}
	v, err := decimal.NewFromString(d.Total.String())
	if err != nil {
		return nil
	}
	minor, err := money.FromDecimal(v)
	if err != nil {
		return nil
	}
	return &minor
}

func buildResponse(p *receipt.Parser, raw, source string) *Response {
	res := p.Parse(raw)
	drafts := receipt.ToDrafts(res)
	resp := &Response{
		Transactions: drafts,
		RawJSON:      raw,
		Diagnostics: Diagnostics{
			Source:       source,
			DateDetected: res.Date != nil,
			Items:        len(res.Items),
		},
	}
	if res.Total.Valid {
		n := json.Number(res.Total.Decimal.StringFixed(2))
		resp.Diagnostics.Total = &n
	}
	return resp
}

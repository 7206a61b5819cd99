package models

import "github.com/shopspring/decimal"

func init() {
	// Currency amounts travel as JSON numbers, not quoted strings; the
	// backend type-checks its payloads and dashboard clients expect numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

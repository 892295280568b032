// Package model holds the ledger records exchanged with the remote sheet
// endpoint and persisted in the local store. JSON tags follow the remote
// wire format so a snapshot decodes straight into these types.
package model

import "github.com/shopspring/decimal"

func init() {
	// The remote writes amounts into numeric sheet cells; quoted decimals
	// would land as text.
	decimal.MarshalJSONWithoutQuotes = true
}

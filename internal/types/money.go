// README: Common money value object used across modules.
package types

import "fmt"

// DefaultCurrency is used when a fare is computed without an explicit currency.
const DefaultCurrency = "USD"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

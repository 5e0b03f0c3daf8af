package dashboard

import (
	"github.com/ashendes/store-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// SumRevenue adds up total_amount across raw order lists, rounded to cents.
// Orders without an amount contribute zero and unparseable amounts are
// skipped.
func SumRevenue(orderLists ...[]any) models.Money {
	total := decimal.Zero
	for _, orders := range orderLists {
		for _, order := range orders {
			if amount, ok := models.OrderAmount(order); ok {
				total = total.Add(amount)
			}
		}
	}
	return models.NewMoney(total)
}

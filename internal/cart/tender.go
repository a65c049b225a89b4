package cart

import "github.com/MrJamesThe3rd/tilly/internal/money"

// Method is how a sale is paid.
type Method string

const (
	MethodCash   Method = "cash"
	MethodCard   Method = "card"
	MethodMobile Method = "mobile"
	MethodSplit  Method = "split"
)

// TenderLeg is one declared payment amount. A cash sale has a single leg with
// the tendered amount; a split sale has one leg per method.
type TenderLeg struct {
	Method Method
	Amount money.Money
}

func sumLegs(legs []TenderLeg) money.Money {
	sum := money.Zero()
	for _, leg := range legs {
		sum = sum.Add(leg.Amount)
	}

	return sum
}

// ValidateTender checks the declared tender against the current cart total
// and returns the change due.
//
//   - cash: the tendered amount must cover the total; change is the excess.
//   - split: the legs must sum to the total within the settlement tolerance;
//     no change is produced.
//   - card/mobile: the tender is captured for exactly the total; no change.
func (c *Cart) ValidateTender(method Method, legs []TenderLeg) (money.Money, error) {
	total := c.Totals().Total

	switch method {
	case MethodCash:
		tendered := sumLegs(legs)
		if tendered.LessThan(total) {
			return money.Zero(), ErrInsufficientTender
		}

		return tendered.Sub(total), nil

	case MethodSplit:
		diff := sumLegs(legs).Sub(total)
		if !diff.IsEffectivelyZero() {
			return money.Zero(), ErrTenderMismatch
		}

		return money.Zero(), nil

	case MethodCard, MethodMobile:
		return money.Zero(), nil

	default:
		return money.Zero(), ErrUnknownMethod
	}
}

package register

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/hold"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type lineResponse struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price"`
	Quantity  int64       `json:"quantity"`
	Discount  money.Money `json:"discount"`
	Net       money.Money `json:"net"`
}

type cartResponse struct {
	Lines        []lineResponse `json:"lines"`
	Subtotal     money.Money    `json:"subtotal"`
	Tax          money.Money    `json:"tax"`
	Total        money.Money    `json:"total"`
	TotalDisplay string         `json:"total_display"`
}

func toCartResponse(c *cart.Cart, currency string) cartResponse {
	lines := c.Lines()
	totals := c.Totals()

	resp := cartResponse{
		Lines:        make([]lineResponse, 0, len(lines)),
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Total:        totals.Total,
		TotalDisplay: totals.Total.Format(currency),
	}

	for _, li := range lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ID:        li.ID,
			ProductID: li.ProductID,
			Name:      li.Name,
			UnitPrice: li.UnitPrice,
			Quantity:  li.Quantity,
			Discount:  li.Discount,
			Net:       li.Net(),
		})
	}

	return resp
}

type saleResponse struct {
	ID            uuid.UUID      `json:"id"`
	Lines         []lineResponse `json:"lines"`
	Subtotal      money.Money    `json:"subtotal"`
	Tax           money.Money    `json:"tax"`
	Total         money.Money    `json:"total"`
	Method        cart.Method    `json:"method"`
	Change        money.Money    `json:"change"`
	ChangeDisplay string         `json:"change_display"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toSaleResponse(sale *cart.Sale, currency string) saleResponse {
	resp := saleResponse{
		ID:            sale.ID,
		Lines:         make([]lineResponse, 0, len(sale.Items)),
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Total:         sale.Total,
		Method:        sale.Method,
		Change:        sale.Change,
		ChangeDisplay: sale.Change.Format(currency),
		CreatedAt:     sale.CreatedAt,
	}

	for _, li := range sale.Items {
		resp.Lines = append(resp.Lines, lineResponse{
			ID:        li.ID,
			ProductID: li.ProductID,
			Name:      li.Name,
			UnitPrice: li.UnitPrice,
			Quantity:  li.Quantity,
			Discount:  li.Discount,
			Net:       li.Net(),
		})
	}

	return resp
}

type holdResponse struct {
	ID        uuid.UUID   `json:"id"`
	Total     money.Money `json:"total"`
	Lines     int         `json:"lines"`
	CreatedAt time.Time   `json:"created_at"`
}

func toHoldResponse(ht hold.HeldTransaction) holdResponse {
	return holdResponse{
		ID:        ht.ID,
		Total:     ht.Total,
		Lines:     len(ht.Snapshot.Lines()),
		CreatedAt: ht.CreatedAt,
	}
}

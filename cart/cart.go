// Package cart keeps one shopping cart per user and computes its totals.
package cart

import (
	"food-ordering-api/models"

	"github.com/shopspring/decimal"
)

// ItemSnapshot is the displayable copy of a menu item taken when it was first added.
type ItemSnapshot struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
}

func snapshotOf(item *models.MenuItem) ItemSnapshot {
	return ItemSnapshot{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		ImageURL:    item.ImageURL,
	}
}

// Line is one menu item in a cart.
type Line struct {
	MenuItemID uint         `json:"menuItemId"`
	MenuItem   ItemSnapshot `json:"item"`
	Quantity   int          `json:"quantity"`
}

// Cart is the stored form: lines in the order they were first added.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) find(menuItemID uint) int {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

// LineView is a line with its computed subtotal.
type LineView struct {
	Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is what clients see: lines, subtotals and the total.
type View struct {
	Items     []LineView      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Total sums price × quantity over all lines, rounded half away from zero to cents.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.MenuItem.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

// View recomputes every figure from the lines.
func (c *Cart) View() View {
	v := View{Items: make([]LineView, 0, len(c.Lines)), ItemCount: len(c.Lines)}
	for _, l := range c.Lines {
		v.Items = append(v.Items, LineView{
			Line:     l,
			Subtotal: l.MenuItem.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2),
		})
	}
	v.Total = c.Total()
	return v
}

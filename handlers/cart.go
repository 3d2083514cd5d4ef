package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"food-ordering-api/apperr"
	"food-ordering-api/cart"
	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
)

// flexInt accepts 3, 3.7 (truncated) and "3" for quantity-like fields.
// Values outside the int32 range are rejected.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return apperr.BadInput("Quantity must be a number")
		}
		n = parsed
	default:
		return apperr.BadInput("Quantity must be a number")
	}
	if math.IsNaN(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return apperr.BadInput("Quantity is out of range")
	}
	f.Value, f.Set = int(math.Trunc(n)), true
	return nil
}

type CartItemRequest struct {
	MenuItemID flexInt `json:"menuItemId"`
	Quantity   flexInt `json:"quantity"`
}

// cartSummary is returned by every cart mutation.
func cartSummary(v cart.View) gin.H {
	return gin.H{"total": v.Total, "itemCount": v.ItemCount}
}

// GetCart returns the caller's cart with subtotals
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.Carts.Get(c.Request.Context(), middleware.MustIdentity(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// AddToCart adds quantity (default 1) of a menu item
func (h *Handler) AddToCart(c *gin.Context) {
	var req CartItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if !req.MenuItemID.Set || req.MenuItemID.Value <= 0 {
		h.fail(c, apperr.BadInput("Menu item ID is required"))
		return
	}
	quantity := 1
	if req.Quantity.Set {
		quantity = req.Quantity.Value
	}

	view, err := h.Carts.Add(c.Request.Context(), middleware.MustIdentity(c).ID, uint(req.MenuItemID.Value), quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Item added to cart", cartSummary(view))
}

// UpdateCart sets a line's quantity; zero or less removes the line
func (h *Handler) UpdateCart(c *gin.Context) {
	var req CartItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if !req.MenuItemID.Set || req.MenuItemID.Value <= 0 || !req.Quantity.Set {
		h.fail(c, apperr.BadInput("Menu item ID and quantity are required"))
		return
	}

	view, err := h.Carts.Update(c.Request.Context(), middleware.MustIdentity(c).ID, uint(req.MenuItemID.Value), req.Quantity.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	message := "Cart updated"
	if req.Quantity.Value <= 0 {
		message = "Item removed from cart"
	}
	respond(c, http.StatusOK, message, cartSummary(view))
}

// RemoveFromCart drops one line
func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, err := paramID(c, "itemId", "menu item")
	if err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.Carts.Remove(c.Request.Context(), middleware.MustIdentity(c).ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", cartSummary(view))
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Carts.Clear(c.Request.Context(), middleware.MustIdentity(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart cleared", gin.H{"total": 0, "itemCount": 0})
}

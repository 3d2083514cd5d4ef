package handlers

import (
	"errors"
	"io"
	"net/http"

	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
)

type CheckoutRequest struct {
	DeliveryAddress *string `json:"delivery_address"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// ListOrders returns own orders for customers, every order for staff and admins
func (h *Handler) ListOrders(c *gin.Context) {
	id := middleware.MustIdentity(c)
	orders, err := h.Orders.List(c.Request.Context(), id.ID, id.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"orders": orders})
}

// GetOrder returns one order; customers only see their own
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		h.fail(c, err)
		return
	}
	id := middleware.MustIdentity(c)
	order, err := h.Orders.Get(c.Request.Context(), orderID, id.ID, id.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"order": order})
}

// Checkout places an order from the caller's cart (customer only)
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	// the body is optional
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.fail(c, badBody())
			return
		}
	}

	order, err := h.Orders.Checkout(c.Request.Context(), middleware.MustIdentity(c).ID, req.DeliveryAddress)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", gin.H{"order": order})
}

// UpdateOrderStatus moves an order through its lifecycle (staff only)
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := paramID(c, "id", "order")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req StatusRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), middleware.MustIdentity(c).ID, orderID, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}

package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
)

type StaffRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RenameRequest struct {
	Nickname string `json:"nickname"`
}

// ListUsers returns every account (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"users": users})
}

// CreateStaff registers a STAFF account (admin only)
func (h *Handler) CreateStaff(c *gin.Context) {
	var req StaffRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	user, err := h.Accounts.CreateStaff(c.Request.Context(), service.RegisterInput{
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Staff account created successfully", gin.H{"user": user})
}

// UpdateStaff renames a STAFF account (admin only)
func (h *Handler) UpdateStaff(c *gin.Context) {
	id, err := paramID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req RenameRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	user, err := h.Accounts.RenameStaff(c.Request.Context(), id, req.Nickname)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Staff account updated", gin.H{"user": user})
}

// DeleteUser hard-deletes an account (admin only)
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := paramID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Accounts.DeleteUser(c.Request.Context(), middleware.MustIdentity(c).ID, id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", nil)
}

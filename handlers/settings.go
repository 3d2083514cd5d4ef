package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
)

// optionalString tells an absent field apart from an explicit null.
type optionalString struct {
	Value *string
	Set   bool
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type ProfileRequest struct {
	Nickname        string         `json:"nickname"`
	Email           string         `json:"email"`
	DeliveryAddress optionalString `json:"delivery_address"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GetProfile returns the caller's own account
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Accounts.Profile(c.Request.Context(), middleware.MustIdentity(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": user})
}

// UpdateProfile edits nickname, email and delivery address (not for staff)
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.MustIdentity(c).ID, service.ProfileUpdate{
		Nickname:        req.Nickname,
		Email:           req.Email,
		DeliveryAddress: req.DeliveryAddress.Value,
		SetAddress:      req.DeliveryAddress.Set,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

// ChangePassword requires the current password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req PasswordRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	err := h.Accounts.ChangePassword(c.Request.Context(), middleware.MustIdentity(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Password updated successfully", nil)
}

package handlers

import (
	"net/http"

	"food-ordering-api/models"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Nickname        string  `json:"nickname"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	DeliveryAddress *string `json:"delivery_address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authData struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user"`
}

// Register creates a new customer account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Nickname:        req.Nickname,
		Email:           req.Email,
		Password:        req.Password,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful", authData{User: user})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	token, user, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", authData{Token: token, User: user})
}

// Logout is stateless; the client drops its token
func (h *Handler) Logout(c *gin.Context) {
	respond(c, http.StatusOK, "Logout successful. Please clear your token.", nil)
}

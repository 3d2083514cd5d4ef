package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health is the liveness probe
func (h *Handler) Health(c *gin.Context) {
	respond(c, http.StatusOK, "Server is running", nil)
}

// StateMachineInfo returns the order lifecycle under the active policy
func (h *Handler) StateMachineInfo(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{
		"policy":          h.FSM.Policy(),
		"transitions":     h.FSM.Transitions(),
		"terminal_states": h.FSM.TerminalStates(),
		"description":     "Kitchen order lifecycle",
	})
}

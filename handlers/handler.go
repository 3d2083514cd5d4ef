package handlers

import (
	"food-ordering-api/cart"
	"food-ordering-api/service"
	"food-ordering-api/statemachine"

	"github.com/sirupsen/logrus"
)

// Handler exposes the services over HTTP.
type Handler struct {
	Accounts *service.AccountService
	Menu     *service.MenuService
	Carts    *cart.Service
	Orders   *service.OrderService
	FSM      *statemachine.Machine
	Log      logrus.FieldLogger
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"food-ordering-api/apperr"
	"food-ordering-api/events"
	"food-ordering-api/metrics"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// OrderService turns carts into orders and drives the order lifecycle.
type OrderService struct {
	orders    OrderStore
	users     UserStore
	carts     Carts
	fsm       *statemachine.Machine
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       logrus.FieldLogger

	pending sync.WaitGroup
}

func NewOrderService(
	orders OrderStore,
	users UserStore,
	carts Carts,
	fsm *statemachine.Machine,
	publisher events.Publisher,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orders:    orders,
		users:     users,
		carts:     carts,
		fsm:       fsm,
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

// Checkout converts the user's cart into a Pending order. The order and its
// lines are written in one transaction; the cart is cleared only afterwards.
func (s *OrderService) Checkout(ctx context.Context, userID uint, address *string) (*models.Order, error) {
	c, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, apperr.BadState("Cart is empty")
	}

	u, err := s.users.FindByID(ctx, userID)
	if store.IsNotFound(err) {
		return nil, apperr.Missing("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to create order")
	}
	deliveryAddress := u.Address()
	if address != nil && strings.TrimSpace(*address) != "" {
		deliveryAddress = *address
	}

	order := &models.Order{
		UserID:          userID,
		Status:          models.StatusPending,
		TotalPrice:      c.Total(),
		DeliveryAddress: deliveryAddress,
		Items:           make([]models.OrderItem, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			Price:      l.MenuItem.Price,
			Name:       l.MenuItem.Name,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperr.Wrap(err, "Failed to create order")
	}
	s.metrics.OrderPlaced()

	logger := s.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": userID})
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.metrics.CartClearFailed()
		logger.WithError(err).Warn("cart not cleared after checkout")
	}
	logger.WithField("total", order.TotalPrice.StringFixed(2)).Info("order placed")

	s.publish(events.Placed(order))

	placed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		// the order is committed; fall back to what was written
		logger.WithError(err).Warn("reload placed order")
		return order, nil
	}
	return placed, nil
}

// UpdateStatus moves an order to status after checking it against the policy.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID uint, status string) (*models.Order, error) {
	to := models.OrderStatus(status)
	if !to.Valid() {
		return nil, apperr.BadInput("Invalid status. Must be one of: " + joinStatuses(models.OrderStatuses))
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if store.IsNotFound(err) {
		return nil, apperr.Missing("Order not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update order status")
	}

	from := order.Status
	if err := s.fsm.CanTransition(from, to); err != nil {
		if errors.Is(err, statemachine.ErrInvalidTransition) {
			return nil, apperr.BadState(err.Error())
		}
		return nil, apperr.Wrap(err, "Failed to update order status")
	}

	if err := s.orders.UpdateStatus(ctx, orderID, from, to, actorID); err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.Missing("Order not found")
		}
		if errors.Is(err, store.ErrStatusChanged) {
			return nil, apperr.BadState("Order status was changed by another request. Please retry.")
		}
		return nil, apperr.Wrap(err, "Failed to update order status")
	}
	s.metrics.StatusChanged(string(to))
	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       to,
		"actor_id": actorID,
	}).Info("order status updated")

	updated, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update order status")
	}
	s.publish(events.StatusChanged(updated, from, actorID))
	return updated, nil
}

// List returns the caller's own orders for customers and every order otherwise.
func (s *OrderService) List(ctx context.Context, requesterID uint, role models.Role) ([]models.Order, error) {
	var (
		orders []models.Order
		err    error
	)
	switch role {
	case models.RoleCustomer:
		orders, err = s.orders.ListByUser(ctx, requesterID)
	case models.RoleStaff, models.RoleAdmin:
		orders, err = s.orders.ListAll(ctx)
	default:
		return nil, apperr.Denied("Access denied")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch orders")
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, orderID, requesterID uint, role models.Role) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if store.IsNotFound(err) {
		return nil, apperr.Missing("Order not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch order")
	}
	if role == models.RoleCustomer && order.UserID != requesterID {
		return nil, apperr.Denied("Access denied")
	}
	return order, nil
}

// Wait blocks until queued event publications have finished.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

func (s *OrderService) publish(event events.OrderEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, event); err != nil {
			s.metrics.EventPublishFailed()
			s.log.WithError(err).WithFields(logrus.Fields{
				"event":    event.Type,
				"order_id": event.OrderID,
			}).Warn("order event not published")
		}
	}()
}

func joinStatuses(statuses []models.OrderStatus) string {
	parts := make([]string, len(statuses))
	for i, st := range statuses {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}

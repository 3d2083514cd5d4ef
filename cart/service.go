package cart

import (
	"context"
	"errors"
	"strconv"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/store"
)

// MaxQuantity caps the quantity of a single cart line.
const MaxQuantity = 10000

var errTooMany = apperr.BadInput("Quantity cannot exceed " + strconv.Itoa(MaxQuantity))

// MenuLookup resolves live menu items.
type MenuLookup interface {
	FindByID(ctx context.Context, id uint) (*models.MenuItem, error)
}

// Service implements cart operations on top of a Store.
type Service struct {
	store Store
	menu  MenuLookup
}

func NewService(s Store, menu MenuLookup) *Service {
	return &Service{store: s, menu: menu}
}

func (s *Service) Get(ctx context.Context, userID uint) (View, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return View{}, apperr.Wrap(err, "Failed to load cart")
	}
	return c.View(), nil
}

// Snapshot returns the raw cart, used by checkout.
func (s *Service) Snapshot(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to load cart")
	}
	return c, nil
}

// Add puts quantity units of a menu item in the cart. An existing line keeps
// its original snapshot and grows by quantity.
func (s *Service) Add(ctx context.Context, userID, menuItemID uint, quantity int) (View, error) {
	if quantity < 1 {
		return View{}, apperr.BadInput("Quantity must be at least 1")
	}
	if quantity > MaxQuantity {
		return View{}, errTooMany
	}
	item, err := s.menu.FindByID(ctx, menuItemID)
	if store.IsNotFound(err) {
		return View{}, apperr.Missing("Menu item not found")
	}
	if err != nil {
		return View{}, apperr.Wrap(err, "Failed to load menu item")
	}

	return s.update(ctx, userID, func(c *Cart) error {
		if i := c.find(menuItemID); i >= 0 {
			if c.Lines[i].Quantity > MaxQuantity-quantity {
				return errTooMany
			}
			c.Lines[i].Quantity += quantity
			return nil
		}
		c.Lines = append(c.Lines, Line{
			MenuItemID: menuItemID,
			MenuItem:   snapshotOf(item),
			Quantity:   quantity,
		})
		return nil
	})
}

// Update sets the quantity of a line. Zero or less removes it.
func (s *Service) Update(ctx context.Context, userID, menuItemID uint, quantity int) (View, error) {
	if quantity > MaxQuantity {
		return View{}, errTooMany
	}
	return s.update(ctx, userID, func(c *Cart) error {
		i := c.find(menuItemID)
		if i < 0 {
			return apperr.Missing("Item not in cart")
		}
		if quantity <= 0 {
			c.remove(i)
		} else {
			c.Lines[i].Quantity = quantity
		}
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, userID, menuItemID uint) (View, error) {
	return s.update(ctx, userID, func(c *Cart) error {
		i := c.find(menuItemID)
		if i < 0 {
			return apperr.Missing("Item not in cart")
		}
		c.remove(i)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return apperr.Wrap(err, "Failed to clear cart")
	}
	return nil
}

func (s *Service) update(ctx context.Context, userID uint, fn func(*Cart) error) (View, error) {
	var view View
	err := s.store.Update(ctx, userID, func(c *Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		view = c.View()
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return View{}, err
		}
		return View{}, apperr.Wrap(err, "Failed to update cart")
	}
	return view, nil
}

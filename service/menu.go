package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"food-ordering-api/apperr"
	"food-ordering-api/metrics"
	"food-ordering-api/models"
	"food-ordering-api/storage"
	"food-ordering-api/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxItemNameLen      = 255
	imageCleanupTimeout = 30 * time.Second
)

// Image is an uploaded file already checked to be an image.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// MenuInput carries catalog fields from a form. A nil field was not sent.
type MenuInput struct {
	Name        *string
	Description *string
	Price       *string
	Image       *Image
}

// MenuService manages the catalog and its images.
type MenuService struct {
	items   MenuStore
	images  storage.ImageStore
	metrics *metrics.Metrics
	log     logrus.FieldLogger

	cleanup sync.WaitGroup
}

func NewMenuService(items MenuStore, images storage.ImageStore, m *metrics.Metrics, log logrus.FieldLogger) *MenuService {
	return &MenuService{items: items, images: images, metrics: m, log: log}
}

func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch menu items")
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if store.IsNotFound(err) {
		return nil, apperr.Missing("Menu item not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch menu item")
	}
	return item, nil
}

func validateName(name string) []string {
	switch {
	case name == "":
		return []string{"Name is required"}
	case utf8.RuneCountInString(name) > maxItemNameLen:
		return []string{"Name must be 1-255 characters"}
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, []string) {
	if raw == "" {
		return decimal.Zero, []string{"Price is required"}
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, []string{"Price must be a valid number"}
	}
	// stored with two decimals, so 0.001 would become 0
	price = price.Round(2)
	if !price.IsPositive() {
		return decimal.Zero, []string{"Price must be greater than 0"}
	}
	return price, nil
}

func optionalText(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

func (s *MenuService) Create(ctx context.Context, in MenuInput) (*models.MenuItem, error) {
	var name, rawPrice string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		rawPrice = strings.TrimSpace(*in.Price)
	}
	errs := validateName(name)
	price, priceErrs := parsePrice(rawPrice)
	errs = append(errs, priceErrs...)
	if len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}

	item := &models.MenuItem{
		Name:        name,
		Description: optionalText(in.Description),
		Price:       price,
	}
	if in.Image != nil {
		url, err := s.images.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Body)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to upload image")
		}
		item.ImageURL = &url
	}

	if err := s.items.Create(ctx, item); err != nil {
		if item.ImageURL != nil {
			s.removeImage(*item.ImageURL)
		}
		return nil, apperr.Wrap(err, "Failed to create menu item")
	}
	s.log.WithField("menu_item_id", item.ID).Info("menu item created")
	return item, nil
}

// Update applies the fields that were sent. A new image replaces the old one;
// deletion of the old image starts before the upload and never blocks it.
// If the replacement is not saved the item is left without an image.
func (s *MenuService) Update(ctx context.Context, id uint, in MenuInput) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var errs []string
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			errs = append(errs, validateName(name)...)
			item.Name = name
		}
	}
	if in.Price != nil {
		if raw := strings.TrimSpace(*in.Price); raw != "" {
			price, priceErrs := parsePrice(raw)
			errs = append(errs, priceErrs...)
			item.Price = price
		}
	}
	if len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}
	if in.Description != nil {
		item.Description = optionalText(in.Description)
	}

	replaced := false
	if in.Image != nil {
		if item.ImageURL != nil {
			s.removeImage(*item.ImageURL)
			replaced = true
		}
		url, err := s.images.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Body)
		if err != nil {
			if replaced {
				s.dropImageURL(ctx, id)
			}
			return nil, apperr.Wrap(err, "Failed to upload image")
		}
		item.ImageURL = &url
	}

	if err := s.items.Save(ctx, item); err != nil {
		if in.Image != nil {
			s.removeImage(*item.ImageURL)
			if replaced {
				s.dropImageURL(ctx, id)
			}
		}
		return nil, apperr.Wrap(err, "Failed to update menu item")
	}
	return item, nil
}

// dropImageURL unsets the stored image once its object is gone and no
// replacement was saved.
func (s *MenuService) dropImageURL(ctx context.Context, id uint) {
	logger := s.log.WithField("menu_item_id", id)
	if err := s.items.ClearImage(ctx, id); err != nil {
		logger.WithError(err).Error("stale image url left on menu item")
		return
	}
	logger.Warn("menu item image cleared after failed replacement")
}

// Delete hides the item from the catalog after starting removal of its image.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.ImageURL != nil {
		s.removeImage(*item.ImageURL)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return apperr.Missing("Menu item not found")
		}
		return apperr.Wrap(err, "Failed to delete menu item")
	}
	s.log.WithField("menu_item_id", id).Info("menu item deleted")
	return nil
}

// Wait blocks until every pending image cleanup has finished.
func (s *MenuService) Wait() {
	s.cleanup.Wait()
}

func (s *MenuService) removeImage(url string) {
	s.cleanup.Add(1)
	go func() {
		defer s.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), imageCleanupTimeout)
		defer cancel()

		if err := s.images.Delete(ctx, url); err != nil {
			s.metrics.ImageCleanupFailed()
			s.log.WithError(err).WithField("image_url", url).Warn("image cleanup failed")
		}
	}()
}

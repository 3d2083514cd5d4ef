package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"food-ordering-api/apperr"
	"food-ordering-api/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// ListMenu returns the whole catalog (public)
func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.Menu.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items})
}

// GetMenuItem returns a single menu item (public)
func (h *Handler) GetMenuItem(c *gin.Context) {
	id, err := paramID(c, "id", "menu item")
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.Menu.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"item": item})
}

// CreateMenuItem adds an item from a multipart form (staff only)
func (h *Handler) CreateMenuItem(c *gin.Context) {
	in, err := menuForm(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.Menu.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Menu item created successfully", gin.H{"item": item})
}

// UpdateMenuItem changes the fields present in the form (staff only)
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, err := paramID(c, "id", "menu item")
	if err != nil {
		h.fail(c, err)
		return
	}
	in, err := menuForm(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.Menu.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item updated successfully", gin.H{"item": item})
}

// DeleteMenuItem removes an item from the catalog (staff only)
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, err := paramID(c, "id", "menu item")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Menu.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item deleted successfully", nil)
}

// menuForm reads name, description, price and image from a multipart or
// urlencoded form. Fields that were not sent stay nil.
func menuForm(c *gin.Context) (service.MenuInput, error) {
	var in service.MenuInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		in.Price = &v
	}

	file, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, apperr.BadInput("Invalid form data")
	}
	img, err := readImage(file)
	if err != nil {
		return in, err
	}
	in.Image = img
	return in, nil
}

// readImage loads an upload of at most 5 MB and checks by content that it is an image.
func readImage(fh *multipart.FileHeader) (*service.Image, error) {
	if fh.Size > maxImageSize {
		return nil, apperr.Validation("Image must be 5MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.BadInput("Invalid form data")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return nil, apperr.BadInput("Invalid form data")
	}
	if len(data) > maxImageSize {
		return nil, apperr.Validation("Image must be 5MB or smaller")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, apperr.Validation("Only image files are allowed")
	}
	return &service.Image{
		Filename:    fh.Filename,
		ContentType: mtype.String(),
		Body:        bytes.NewReader(data),
	}, nil
}

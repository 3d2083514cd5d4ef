package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"food-ordering-api/apperr"
	"food-ordering-api/statemachine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage() *Image {
	return &Image{Filename: "burger.png", ContentType: "image/png", Body: strings.NewReader("png")}
}

func TestMenuService_CreateValidation(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)

	tests := []struct {
		name string
		in   MenuInput
		want []string
	}{
		{"missing_everything", MenuInput{}, []string{"Name is required", "Price is required"}},
		{"not_a_number", MenuInput{Name: ptr("Burger"), Price: ptr("cheap")}, []string{"Price must be a valid number"}},
		{"zero_price", MenuInput{Name: ptr("Burger"), Price: ptr("0")}, []string{"Price must be greater than 0"}},
		{"negative_price", MenuInput{Name: ptr("Burger"), Price: ptr("-1.50")}, []string{"Price must be greater than 0"}},
		{"sub_cent_price", MenuInput{Name: ptr("Mint"), Price: ptr("0.001")}, []string{"Price must be greater than 0"}},
		{"long_name", MenuInput{Name: ptr(strings.Repeat("x", 256)), Price: ptr("1")}, []string{"Name must be 1-255 characters"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := e.catalog.Create(context.Background(), testCase.in)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.ValidationFailed, appErr.Kind)
			assert.Equal(t, testCase.want, appErr.Details)
		})
	}
	e.images.AssertNotCalled(t, "Upload")
}

func TestMenuService_CreateWithImage(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	ctx := context.Background()
	e.images.On("Upload", "burger.png", "image/png").Return("/uploads/a.png", nil).Once()

	item, err := e.catalog.Create(ctx, MenuInput{
		Name: ptr("Burger"), Description: ptr("Beef"), Price: ptr("9.99"), Image: pngImage(),
	})
	require.NoError(t, err)
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, "/uploads/a.png", *item.ImageURL)
	assert.Equal(t, "9.99", item.Price.StringFixed(2))

	got, err := e.catalog.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beef", *got.Description)
	e.images.AssertExpectations(t)
}

func TestMenuService_CreateUploadFailure(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	e.images.On("Upload", "burger.png", "image/png").Return("", errors.New("s3 down")).Once()

	_, err := e.catalog.Create(context.Background(), MenuInput{Name: ptr("Burger"), Price: ptr("9.99"), Image: pngImage()})
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))

	items, err := e.catalog.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMenuService_UpdateReplacesImage(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	ctx := context.Background()
	e.images.On("Upload", "burger.png", "image/png").Return("/uploads/old.png", nil).Once()
	item, err := e.catalog.Create(ctx, MenuInput{Name: ptr("Burger"), Price: ptr("9.99"), Image: pngImage()})
	require.NoError(t, err)

	e.images.On("Delete", "/uploads/old.png").Return(errors.New("already gone")).Once()
	e.images.On("Upload", "burger.png", "image/png").Return("/uploads/new.png", nil).Once()

	updated, err := e.catalog.Update(ctx, item.ID, MenuInput{Price: ptr("10.50"), Image: pngImage()})
	require.NoError(t, err)
	e.catalog.Wait()

	assert.Equal(t, "Burger", updated.Name)
	assert.Equal(t, "10.50", updated.Price.StringFixed(2))
	assert.Equal(t, "/uploads/new.png", *updated.ImageURL)
	e.images.AssertExpectations(t)
	// a failed cleanup is only logged
	assert.Contains(t, e.warnings(), "image cleanup failed")
}

func TestMenuService_UpdateUploadFailureDropsOldImage(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	ctx := context.Background()
	e.images.On("Upload", "burger.png", "image/png").Return("/uploads/old.png", nil).Once()
	item, err := e.catalog.Create(ctx, MenuInput{Name: ptr("Burger"), Price: ptr("9.99"), Image: pngImage()})
	require.NoError(t, err)

	e.images.On("Delete", "/uploads/old.png").Return(nil).Once()
	e.images.On("Upload", "burger.png", "image/png").Return("", errors.New("s3 down")).Once()

	_, err = e.catalog.Update(ctx, item.ID, MenuInput{Image: pngImage()})
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	e.catalog.Wait()
	e.images.AssertExpectations(t)

	got, err := e.catalog.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ImageURL)
	assert.Contains(t, e.warnings(), "menu item image cleared after failed replacement")
}

func TestMenuService_UpdateRoundsPrice(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	ctx := context.Background()
	item, err := e.catalog.Create(ctx, MenuInput{Name: ptr("Burger"), Price: ptr("9.999")})
	require.NoError(t, err)
	assert.Equal(t, "10.00", item.Price.StringFixed(2))

	_, err = e.catalog.Update(ctx, item.ID, MenuInput{Price: ptr("0.004")})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	got, err := e.catalog.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Price.StringFixed(2))
}

func TestMenuService_UpdateKeepsAbsentFields(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	ctx := context.Background()
	item, err := e.catalog.Create(ctx, MenuInput{Name: ptr("Burger"), Description: ptr("Beef"), Price: ptr("9.99")})
	require.NoError(t, err)

	updated, err := e.catalog.Update(ctx, item.ID, MenuInput{Name: ptr(""), Description: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Burger", updated.Name)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "9.99", updated.Price.StringFixed(2))

	_, err = e.catalog.Update(ctx, item.ID, MenuInput{Price: ptr("0")})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = e.catalog.Update(ctx, 999, MenuInput{Name: ptr("x")})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestMenuService_Delete(t *testing.T) {
	e := newEnv(t, statemachine.Permissive)
	ctx := context.Background()
	e.images.On("Upload", "burger.png", "image/png").Return("/uploads/a.png", nil).Once()
	item, err := e.catalog.Create(ctx, MenuInput{Name: ptr("Burger"), Price: ptr("9.99"), Image: pngImage()})
	require.NoError(t, err)

	e.images.On("Delete", "/uploads/a.png").Return(nil).Once()
	require.NoError(t, e.catalog.Delete(ctx, item.ID))
	e.catalog.Wait()
	e.images.AssertExpectations(t)

	_, err = e.catalog.Get(ctx, item.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(e.catalog.Delete(ctx, item.ID)))
}

package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenu map[uint]*models.MenuItem

func (m fakeMenu) FindByID(_ context.Context, id uint) (*models.MenuItem, error) {
	item, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func testMenu() fakeMenu {
	return fakeMenu{
		1: {ID: 1, Name: "Burger", Price: decimal.RequireFromString("9.99")},
		2: {ID: 2, Name: "Fries", Price: decimal.RequireFromString("3.50")},
		3: {ID: 3, Name: "Third", Price: decimal.RequireFromString("0.333")},
	}
}

func TestService_AddAccumulatesAndTotals(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	view, err := svc.Add(ctx, 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "19.98", view.Total.StringFixed(2))
	assert.Equal(t, 1, view.ItemCount)

	view, err = svc.Add(ctx, 7, 2, 1)
	require.NoError(t, err)
	view, err = svc.Add(ctx, 7, 1, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, uint(1), view.Items[0].MenuItemID)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "29.97", view.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "33.47", view.Total.StringFixed(2))
	assert.Equal(t, 2, view.ItemCount)
}

func TestService_AddKeepsOriginalSnapshot(t *testing.T) {
	menu := testMenu()
	svc := NewService(NewMemoryStore(), menu)
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 1, 1)
	require.NoError(t, err)

	menu[1].Price = decimal.RequireFromString("12.00")
	view, err := svc.Add(ctx, 7, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "19.98", view.Total.StringFixed(2))
}

func TestService_TotalRoundsOnce(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	view, err := svc.Add(ctx, 7, 3, 3)
	require.NoError(t, err)
	// 0.333 × 3 = 0.999
	assert.Equal(t, "1.00", view.Total.StringFixed(2))
	assert.Equal(t, "1.00", view.Items[0].Subtotal.StringFixed(2))
}

func TestService_Errors(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 99, 1)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = svc.Add(ctx, 7, 1, 0)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	_, err = svc.Update(ctx, 7, 2, 3)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = svc.Remove(ctx, 7, 2)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestService_QuantityCap(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 1, MaxQuantity+1)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	view, err := svc.Add(ctx, 7, 1, MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, view.Items[0].Quantity)

	// the sum is checked too and the line stays as it was
	_, err = svc.Add(ctx, 7, 1, 1)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	_, err = svc.Update(ctx, 7, 1, MaxQuantity+1)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	view, err = svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, view.Items[0].Quantity)
	assert.True(t, view.Total.IsPositive())
}

func TestMemoryStore_ReleasesUserLocks(t *testing.T) {
	ms := NewMemoryStore()
	svc := NewService(ms, testMenu())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := uint(0); i < 20; i++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, _ = svc.Add(ctx, uid%4, 1, 1)
			_ = svc.Clear(ctx, uid%4)
		}(i)
	}
	wg.Wait()

	ms.mu.Lock()
	defer ms.mu.Unlock()
	assert.Empty(t, ms.locks)
	assert.Empty(t, ms.carts)
}

func TestService_UpdateRemoveClear(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 1, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, 2, 1)
	require.NoError(t, err)

	view, err := svc.Update(ctx, 7, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[1].Quantity)

	view, err = svc.Update(ctx, 7, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)

	view, err = svc.Remove(ctx, 7, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())

	_, err = svc.Add(ctx, 7, 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 7))
	require.NoError(t, svc.Clear(ctx, 7))

	view, err = svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, view.ItemCount)
}

func TestService_CartsArePerUser(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 1, 1)
	require.NoError(t, err)

	view, err := svc.Get(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestMemoryStore_ConcurrentAdds(t *testing.T) {
	svc := NewService(NewMemoryStore(), testMenu())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Add(ctx, 7, 1, 1)
		}()
	}
	wg.Wait()

	view, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 50, view.Items[0].Quantity)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	rs, mr := newRedisStore(t)
	svc := NewService(rs, testMenu())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 1, 2)
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart:7"))
	assert.Equal(t, time.Hour, mr.TTL("cart:7"))

	view, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Burger", view.Items[0].MenuItem.Name)
	assert.Equal(t, "19.98", view.Total.StringFixed(2))

	// removing the last line drops the key
	_, err = svc.Remove(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:7"))

	_, err = svc.Add(ctx, 7, 2, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 7))
	assert.False(t, mr.Exists("cart:7"))
}

func TestRedisStore_ErrorFromFnAbortsSave(t *testing.T) {
	rs, mr := newRedisStore(t)
	svc := NewService(rs, testMenu())
	ctx := context.Background()

	_, err := svc.Update(ctx, 7, 1, 2)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.False(t, mr.Exists("cart:7"))
}

func TestRedisStore_ConnectionFailure(t *testing.T) {
	rs, mr := newRedisStore(t)
	svc := NewService(rs, testMenu())
	mr.Close()

	_, err := svc.Get(context.Background(), 7)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

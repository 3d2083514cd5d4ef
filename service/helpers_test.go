package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"food-ordering-api/cart"
	"food-ordering-api/events"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"
	"food-ordering-api/store"
	"food-ordering-api/testutil"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeIssuer struct{}

func (fakeIssuer) Issue(u *models.User) (string, error) {
	return fmt.Sprintf("token-%d", u.ID), nil
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) Upload(_ context.Context, name, contentType string, body io.Reader) (string, error) {
	args := m.Called(name, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Delete(_ context.Context, url string) error {
	return m.Called(url).Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// failingClear makes Clear fail while everything else works.
type failingClear struct {
	*cart.MemoryStore
}

func (failingClear) Clear(context.Context, uint) error {
	return errors.New("redis: connection refused")
}

type env struct {
	db        *gorm.DB
	users     *store.UserStore
	menu      *store.MenuStore
	orders    *store.OrderStore
	carts     *cart.Service
	accounts  *AccountService
	catalog   *MenuService
	ordering  *OrderService
	images    *mockImages
	publisher *recordingPublisher
	logs      *logtest.Hook
}

func newEnv(t *testing.T, policy statemachine.Policy) *env {
	return newEnvWithCartStore(t, policy, cart.NewMemoryStore())
}

func newEnvWithCartStore(t *testing.T, policy statemachine.Policy, cs cart.Store) *env {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	db := testutil.NewDB(t)
	e := &env{
		db:        db,
		users:     store.NewUserStore(db, bcrypt.MinCost),
		menu:      store.NewMenuStore(db),
		orders:    store.NewOrderStore(db),
		images:    &mockImages{},
		publisher: &recordingPublisher{},
		logs:      hook,
	}
	e.carts = cart.NewService(cs, e.menu)
	e.accounts = NewAccountService(e.users, fakeIssuer{}, log)
	e.catalog = NewMenuService(e.menu, e.images, nil, log)
	e.ordering = NewOrderService(e.orders, e.users, e.carts, statemachine.New(policy), e.publisher, nil, log)
	return e
}

func (e *env) customer(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.accounts.Register(context.Background(), RegisterInput{
		Nickname: "John", Email: email, Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *env) user(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Nickname: string(role), Email: email, Role: role}
	require.NoError(t, e.users.Create(context.Background(), u, "password123"))
	return u
}

func (e *env) item(t *testing.T, name, price string) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, e.menu.Create(context.Background(), item))
	return item
}

func ptr(s string) *string { return &s }

func (e *env) warnings() []string {
	var out []string
	for _, entry := range e.logs.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			out = append(out, entry.Message)
		}
	}
	return out
}

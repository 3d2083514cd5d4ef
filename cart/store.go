package cart

import (
	"context"
	"sync"
)

// Store holds carts keyed by user id.
type Store interface {
	Get(ctx context.Context, userID uint) (*Cart, error)
	// Update loads the cart, applies fn and saves the result atomically with
	// respect to other updates of the same user. An error from fn aborts the save.
	Update(ctx context.Context, userID uint, fn func(*Cart) error) error
	Clear(ctx context.Context, userID uint) error
}

// MemoryStore keeps carts in process memory. Carts are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uint]*Cart
	locks map[uint]*userLock
}

// userLock serializes updates of one user. It is dropped once nobody holds
// or waits for it.
type userLock struct {
	sync.Mutex
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[uint]*Cart),
		locks: make(map[uint]*userLock),
	}
}

func (s *MemoryStore) lock(userID uint) *userLock {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return l
}

func (s *MemoryStore) unlock(userID uint, l *userLock) {
	l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, userID)
	}
}

func (s *MemoryStore) load(userID uint) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return &Cart{}
	}
	return &Cart{Lines: append([]Line(nil), c.Lines...)}
}

func (s *MemoryStore) Get(_ context.Context, userID uint) (*Cart, error) {
	return s.load(userID), nil
}

func (s *MemoryStore) Update(_ context.Context, userID uint, fn func(*Cart) error) error {
	l := s.lock(userID)
	defer s.unlock(userID, l)

	c := s.load(userID)
	if err := fn(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Empty() {
		delete(s.carts, userID)
	} else {
		s.carts[userID] = c
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID uint) error {
	l := s.lock(userID)
	defer s.unlock(userID, l)

	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
	return nil
}

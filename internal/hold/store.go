package hold

import (
	"errors"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

var (
	ErrEmptyCart = errors.New("cannot hold an empty cart")
	ErrNotFound  = errors.New("held transaction not found")
)

// HeldTransaction is a suspended cart waiting to be restored at the register.
type HeldTransaction struct {
	ID        uuid.UUID
	Snapshot  *cart.Cart
	Total     money.Money
	CreatedAt time.Time
}

// Store keeps held transactions for the current shift. It is shared across
// registers, so every access goes through the mutex; in particular two
// concurrent Restore calls for the same id cannot both succeed.
type Store struct {
	mu   sync.Mutex
	held map[uuid.UUID]HeldTransaction
	now  func() time.Time
}

func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}

	return &Store{
		held: make(map[uuid.UUID]HeldTransaction),
		now:  now,
	}
}

// Hold snapshots the cart into the store and returns the new id. The
// snapshot is a deep copy: the caller keeps mutating the active cart without
// affecting the held one. The caller clears the active cart afterwards.
func (s *Store) Hold(c *cart.Cart) (uuid.UUID, error) {
	if c.IsEmpty() {
		return uuid.Nil, ErrEmptyCart
	}

	ht := HeldTransaction{
		ID:        uuid.New(),
		Snapshot:  c.Snapshot(),
		Total:     c.Totals().Total,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.held[ht.ID] = ht
	s.mu.Unlock()

	return ht.ID, nil
}

// Restore removes the held transaction and returns it. The caller is
// responsible for clearing or replacing the active cart; restored lines are
// never merged into whatever is currently rung up.
func (s *Store) Restore(id uuid.UUID) (HeldTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ht, ok := s.held[id]
	if !ok {
		return HeldTransaction{}, ErrNotFound
	}

	delete(s.held, id)

	return ht, nil
}

// Discard drops a held transaction without restoring it.
func (s *Store) Discard(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.held[id]; !ok {
		return ErrNotFound
	}

	delete(s.held, id)

	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.held)
}

// List yields the held transactions oldest first. The sequence is
// non-destructive and restartable; it iterates over a copy taken when List
// is called.
func (s *Store) List() iter.Seq[HeldTransaction] {
	s.mu.Lock()
	held := make([]HeldTransaction, 0, len(s.held))

	for _, ht := range s.held {
		held = append(held, ht)
	}
	s.mu.Unlock()

	sort.Slice(held, func(i, j int) bool {
		return held[i].CreatedAt.Before(held[j].CreatedAt)
	})

	return func(yield func(HeldTransaction) bool) {
		for _, ht := range held {
			if !yield(ht) {
				return
			}
		}
	}
}

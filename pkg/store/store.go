// Package store holds every figure of one canvas behind a single mutex.
//
// Producers use Do, which waits for the lock. The render loop uses TryDo,
// which never waits. A panic while the lock is held poisons the store: the
// lock is released, and every later Do or TryDo returns ErrPoisoned instead
// of handing out data that may be half written.
package store

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roffe/plotcanvas/pkg/figure"
)

var (
	ErrNotFound = errors.New("figure not found")
	ErrPoisoned = errors.New("store poisoned: a previous holder panicked")
)

// Figures is the store content as seen from inside Do/TryDo. It must not
// escape the callback.
type Figures map[string]*figure.Figure

// Lookup returns the figure stored under name, but only if it is still the
// instance identified by id. A zero id matches whatever is stored.
func (f Figures) Lookup(name string, id uuid.UUID) (*figure.Figure, error) {
	fig, ok := f[name]
	if !ok || (id != uuid.Nil && fig.ID != id) {
		return nil, ErrNotFound
	}
	return fig, nil
}

func (f Figures) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

type Store struct {
	mu       sync.Mutex
	poisoned atomic.Bool
	figures  Figures
}

func New() *Store {
	return &Store{
		figures: make(Figures),
	}
}

func (s *Store) Poisoned() bool {
	return s.poisoned.Load()
}

// Do runs fn with exclusive access, waiting for the lock if needed.
func (s *Store) Do(fn func(Figures) error) error {
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	s.mu.Lock()
	return s.run(fn)
}

// TryDo runs fn only if the lock is free right now. ok is false when fn did
// not run; err is nil in that case unless the store is poisoned.
func (s *Store) TryDo(fn func(Figures) error) (ok bool, err error) {
	if s.poisoned.Load() {
		return false, ErrPoisoned
	}
	if !s.mu.TryLock() {
		return false, nil
	}
	if s.poisoned.Load() {
		s.mu.Unlock()
		return false, ErrPoisoned
	}
	return true, s.run(fn)
}

// run expects s.mu to be held and always releases it.
func (s *Store) run(fn func(Figures) error) error {
	completed := false
	defer func() {
		if !completed {
			s.poisoned.Store(true)
		}
		s.mu.Unlock()
	}()
	// poisoned while we were waiting on the lock
	if s.poisoned.Load() {
		completed = true
		return ErrPoisoned
	}
	err := fn(s.figures)
	completed = true
	return err
}

// Insert stores fig under name, replacing any previous figure of that name.
func (s *Store) Insert(name string, fig *figure.Figure) error {
	return s.Do(func(f Figures) error {
		f[name] = fig
		return nil
	})
}

func (s *Store) Remove(name string) error {
	return s.Do(func(f Figures) error {
		if _, ok := f[name]; !ok {
			return ErrNotFound
		}
		delete(f, name)
		return nil
	})
}

func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.Do(func(f Figures) error {
		names = f.Names()
		return nil
	})
	return names, err
}

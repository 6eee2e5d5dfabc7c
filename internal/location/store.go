package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/meteou/internal/store"
)

// DefaultStorageKey is the storage key holding the user's favorites.
const DefaultStorageKey = "savedLocations"

var validate = validator.New()

var (
	// ErrAlreadyExists is returned by Add when the coordinates are already a
	// default or a saved favorite.
	ErrAlreadyExists = errors.New("location already exists")
	// ErrProtected is returned by Remove for default locations.
	ErrProtected = errors.New("default locations cannot be removed")
	// ErrNotFound is returned by Remove when no favorite has the coordinates.
	ErrNotFound = errors.New("location is not a saved favorite")
	// ErrPersist is returned when the updated favorites could not be written.
	ErrPersist = errors.New("favorites could not be saved")
	// ErrStorageUnavailable is returned when a mutation cannot read the
	// current favorites from storage.
	ErrStorageUnavailable = errors.New("favorites storage unavailable")
	// ErrInvalidCoordinates is returned for out-of-range or NaN coordinates.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrClosed is returned for mutations submitted after Close.
	ErrClosed = errors.New("location store closed")
)

// Store merges the bundled defaults with the user's persisted favorites.
//
// Reads go straight to storage. Mutations are queued to a single writer
// goroutine, so a read-modify-write cycle never interleaves with another.
// Every method returns a freshly built slice that callers may keep.
type Store struct {
	kv          store.KV
	key         string
	precision   int
	defaults    []Location
	defaultKeys map[Key]struct{}

	ops       chan mutation
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type mutation struct {
	ctx   context.Context
	apply func(ctx context.Context) ([]Location, error)
	reply chan mutationResult
}

type mutationResult struct {
	locations []Location
	err       error
}

// Option customizes a Store.
type Option func(*Store)

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithPrecision overrides DefaultPrecision. Values outside 0..10 are ignored.
func WithPrecision(precision int) Option {
	return func(s *Store) {
		if precision >= 0 && precision <= 10 {
			s.precision = precision
		}
	}
}

// NewStore starts the writer goroutine. Call Close to stop it.
func NewStore(kv store.KV, defaults Defaults, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		key:       DefaultStorageKey,
		precision: DefaultPrecision,
		defaults:  defaults.Locations(),
		ops:       make(chan mutation),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.defaultKeys = make(map[Key]struct{}, len(s.defaults))
	for _, d := range s.defaults {
		s.defaultKeys[d.Key(s.precision)] = struct{}{}
	}

	go s.run()
	return s
}

// Close stops the writer. Mutations already accepted finish first.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case m := <-s.ops:
			locs, err := m.apply(m.ctx)
			m.reply <- mutationResult{locations: locs, err: err}
		case <-s.quit:
			return
		}
	}
}

// submit hands fn to the writer. Once the writer has accepted it the mutation
// runs to completion; ctx only bounds the wait for the queue slot and the
// storage calls made by fn.
func (s *Store) submit(ctx context.Context, fn func(ctx context.Context) ([]Location, error)) ([]Location, error) {
	m := mutation{ctx: ctx, apply: fn, reply: make(chan mutationResult, 1)}
	select {
	case s.ops <- m:
	case <-s.quit:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	r := <-m.reply
	return r.locations, r.err
}

// Precision returns the number of decimals used for coordinate keys.
func (s *Store) Precision() int { return s.precision }

// Defaults returns a copy of the default locations.
func (s *Store) Defaults() []Location {
	out := make([]Location, len(s.defaults))
	copy(out, s.defaults)
	return out
}

// IsDefault reports whether loc has the coordinates of a default location.
func (s *Store) IsDefault(loc Location) bool {
	_, ok := s.defaultKeys[loc.Key(s.precision)]
	return ok
}

// Load returns the merged view: defaults first, then every saved favorite
// whose coordinates were not seen before. Storage problems degrade to the
// defaults-only view.
func (s *Store) Load(ctx context.Context) []Location {
	user, err := s.readUser(ctx)
	if err != nil {
		log.Printf("WARN: location store: %v; showing defaults only", err)
		user = nil
	}
	return s.merge(user)
}

// Add appends loc to the saved favorites and returns the merged view read
// back from storage.
func (s *Store) Add(ctx context.Context, loc Location) ([]Location, error) {
	if err := validate.Struct(loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}

	return s.submit(ctx, func(ctx context.Context) ([]Location, error) {
		k := loc.Key(s.precision)
		if _, ok := s.defaultKeys[k]; ok {
			return nil, fmt.Errorf("%w: %s is a default location", ErrAlreadyExists, k)
		}

		user, err := s.readUser(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range user {
			if u.Key(s.precision) == k {
				return nil, fmt.Errorf("%w: %s is saved as %q", ErrAlreadyExists, k, u.Name)
			}
		}

		updated := make([]Location, 0, len(user)+1)
		updated = append(updated, user...)
		updated = append(updated, loc)
		if err := s.write(ctx, updated); err != nil {
			return nil, err
		}

		log.Printf("INFO: location store: saved %q (%s)", loc.Name, k)
		return s.confirm(ctx, updated), nil
	})
}

// Remove deletes every saved favorite with the coordinates of loc.
func (s *Store) Remove(ctx context.Context, loc Location) ([]Location, error) {
	return s.submit(ctx, func(ctx context.Context) ([]Location, error) {
		k := loc.Key(s.precision)
		if _, ok := s.defaultKeys[k]; ok {
			return nil, fmt.Errorf("%w: %s", ErrProtected, k)
		}

		user, err := s.readUser(ctx)
		if err != nil {
			return nil, err
		}

		kept := make([]Location, 0, len(user))
		for _, u := range user {
			if u.Key(s.precision) != k {
				kept = append(kept, u)
			}
		}
		if len(kept) == len(user) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
		}

		if err := s.write(ctx, kept); err != nil {
			return nil, err
		}

		log.Printf("INFO: location store: removed %d favorite(s) at %s", len(user)-len(kept), k)
		return s.confirm(ctx, kept), nil
	})
}

// readUser returns the raw saved favorites. A missing key or an unparsable
// payload yields an empty set; only backend failures are returned.
func (s *Store) readUser(ctx context.Context) ([]Location, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var locs []Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		log.Printf("WARN: location store: malformed value under %q treated as empty: %v", s.key, err)
		return nil, nil
	}
	return locs, nil
}

func (s *Store) write(ctx context.Context, user []Location) error {
	if user == nil {
		user = []Location{}
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.kv.Put(ctx, s.key, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// confirm re-reads storage after a successful write so the returned view
// reflects what is persisted rather than the in-memory update.
func (s *Store) confirm(ctx context.Context, written []Location) []Location {
	user, err := s.readUser(ctx)
	if err != nil {
		log.Printf("WARN: location store: read-back failed, using written value: %v", err)
		return s.merge(written)
	}
	return s.merge(user)
}

func (s *Store) merge(user []Location) []Location {
	out := make([]Location, 0, len(s.defaults)+len(user))
	seen := make(map[Key]struct{}, len(s.defaults)+len(user))

	for _, d := range s.defaults {
		out = append(out, d)
		seen[d.Key(s.precision)] = struct{}{}
	}
	for _, u := range user {
		k := u.Key(s.precision)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, u)
	}
	return out
}

package datastores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// DefaultSlotKey is the slot key holding the contacts snapshot.
const DefaultSlotKey = "contacts"

// ContactsInmem implements [ContactsStore]. The authoritative collection
// lives in memory and every mutation writes a full snapshot to a [Slot].
type ContactsInmem struct {
	mu       sync.Mutex
	slot     Slot
	key      string
	newID    func() ContactID
	logger   *slog.Logger
	index    map[ContactID]int
	contacts []Contact // never modified in place, see List
}

var _ ContactsStore = (*ContactsInmem)(nil)

type ContactsOption func(*ContactsInmem)

// WithSlotKey sets the key of the snapshot in the slot.
func WithSlotKey(key string) ContactsOption {
	return func(s *ContactsInmem) { s.key = key }
}

// WithIDGenerator replaces [NewContactID].
func WithIDGenerator(fn func() ContactID) ContactsOption {
	return func(s *ContactsInmem) { s.newID = fn }
}

// WithLogger sets the logger reporting unreadable snapshots.
func WithLogger(logger *slog.Logger) ContactsOption {
	return func(s *ContactsInmem) { s.logger = logger }
}

func NewContactsInmem(slot Slot, opts ...ContactsOption) *ContactsInmem {
	s := &ContactsInmem{
		slot:     slot,
		key:      DefaultSlotKey,
		newID:    NewContactID,
		logger:   slog.New(slog.DiscardHandler),
		index:    map[ContactID]int{},
		contacts: []Contact{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the slot content. A missing or
// unreadable snapshot leaves an empty collection.
func (s *ContactsInmem) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loaded []Contact
	data, err := s.slot.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrSlotEmpty):
	case err != nil:
		s.logger.WarnContext(ctx, "could not read contacts snapshot", "key", s.key, "err", err)
	default:
		err = json.Unmarshal(data, &loaded)
		if err != nil {
			s.logger.WarnContext(ctx, "could not decode contacts snapshot", "key", s.key, "err", err)
			loaded = nil
		}
	}

	contacts := make([]Contact, 0, len(loaded))
	index := make(map[ContactID]int, len(loaded))
	for _, c := range loaded {
		if _, dup := index[c.ID]; c.ID == "" || dup {
			s.logger.WarnContext(ctx, "skipping contact with empty or duplicate id", "id", c.ID)
			continue
		}
		index[c.ID] = len(contacts)
		contacts = append(contacts, c)
	}
	s.contacts, s.index = contacts, index
	s.logger.DebugContext(ctx, "contacts loaded", "count", len(contacts))
}

func (s *ContactsInmem) Create(ctx context.Context, name, email, phone string) (Contact, error) {
	err := validate(&name, &email, &phone)
	if err != nil {
		return Contact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
retry:
	c := Contact{ID: s.newID(), Name: name, Email: email, Phone: phone}
	if _, loaded := s.index[c.ID]; loaded || c.ID == "" {
		goto retry
	}
	next := append(slices.Clip(s.contacts), c)
	err = s.persist(ctx, next)
	if err != nil {
		return Contact{}, err
	}
	s.index[c.ID] = len(s.contacts)
	s.contacts = next
	return c, nil
}

func (s *ContactsInmem) Update(ctx context.Context, id ContactID, name, email, phone string) (Contact, error) {
	err := validate(&name, &email, &phone)
	if err != nil {
		return Contact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Contact{}, &NotFoundError{ID: id}
	}
	next := slices.Clone(s.contacts)
	next[i].Name, next[i].Email, next[i].Phone = name, email, phone
	err = s.persist(ctx, next)
	if err != nil {
		return Contact{}, err
	}
	s.contacts = next
	return next[i], nil
}

// Delete removes the contact and reports whether it existed.
// The snapshot is written even when nothing was removed.
func (s *ContactsInmem) Delete(ctx context.Context, id ContactID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	next := s.contacts
	if ok {
		next = slices.Delete(slices.Clone(s.contacts), i, i+1)
	}
	err := s.persist(ctx, next)
	if err != nil {
		return false, err
	}
	if ok {
		s.contacts = next
		delete(s.index, id)
		for j := i; j < len(next); j++ {
			s.index[next[j].ID] = j
		}
	}
	return ok, nil
}

func (s *ContactsInmem) Get(_ context.Context, id ContactID) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Contact{}, &NotFoundError{ID: id}
	}
	return s.contacts[i], nil
}

// List returns the contacts whose name contains term, ignoring case.
// An empty term matches every contact. The sequence iterates over the
// collection as it was when List was called.
func (s *ContactsInmem) List(term string) iter.Seq[Contact] {
	s.mu.Lock()
	snapshot := s.contacts
	s.mu.Unlock()

	return func(yield func(Contact) bool) {
		var fold cases.Caser
		needle := term
		if needle != "" {
			fold = cases.Fold()
			needle = fold.String(needle)
		}
		for _, c := range snapshot {
			if needle != "" && !strings.Contains(fold.String(c.Name), needle) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func (s *ContactsInmem) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

func (s *ContactsInmem) persist(ctx context.Context, contacts []Contact) error {
	data, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	err = s.slot.Set(ctx, s.key, data)
	if err != nil {
		return fmt.Errorf("write contacts snapshot: %w", err)
	}
	return nil
}

// Package admin implements the back-office entity screens as one generic
// Screen parameterized by a Descriptor per entity.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/internal/validation"
	"github.com/mytheresa/storefront/models"
)

var (
	ErrClosed       = errors.New("admin: screen closed")
	ErrNotConfirmed = errors.New("admin: deletion not confirmed")
	ErrReadOnly     = errors.New("admin: operation not supported for this entity")
	ErrInvalidBody  = errors.New("admin: invalid request body")
	// ErrStaleRow means the row being changed is no longer in the list,
	// usually because someone else removed it. The list is reloaded and the
	// caller decides what to do next.
	ErrStaleRow = errors.New("admin: row no longer exists")
)

const staleRowMessage = "This entry no longer exists, the list has been refreshed"

// Column is one exported spreadsheet column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Descriptor is everything that differs between two entity screens.
type Descriptor[T models.Entity] struct {
	Name     string // path segment, e.g. "colors"
	Label    string // singular, for notices
	Endpoint string
	Columns  []Column[T]
	Search   func(T) string
	Validate func(T) error
	// ReadOnly screens list, export and edit rows but never create,
	// delete or toggle them.
	ReadOnly bool
}

type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// Screen holds the rows of one entity screen. Every remote call is tied to
// the screen's lifetime: Close cancels whatever is in flight and any
// response that still arrives is dropped.
type Screen[T models.Entity] struct {
	desc     Descriptor[T]
	client   *api.Client
	notices  notify.Notifier
	log      logrus.FieldLogger
	pageSize int
	onChange []func()

	mu     sync.Mutex
	rows   []T
	loaded bool
	query  string
	gen    uint64
	life   context.Context
	cancel context.CancelFunc
}

func NewScreen[T models.Entity](d Descriptor[T], c *api.Client, n notify.Notifier, pageSize int, log logrus.FieldLogger) *Screen[T] {
	if pageSize < 1 {
		pageSize = 10
	}
	if d.Validate == nil {
		d.Validate = func(v T) error { return validation.Struct(v) }
	}
	s := &Screen[T]{
		desc:     d,
		client:   c,
		notices:  n,
		log:      log.WithField("screen", d.Name),
		pageSize: pageSize,
	}
	s.life, s.cancel = context.WithCancel(context.Background())
	return s
}

func (s *Screen[T]) Name() string { return s.desc.Name }

// OnChange registers f to run after every successful mutation.
func (s *Screen[T]) OnChange(f func()) {
	s.onChange = append(s.onChange, f)
}

// Loaded reports whether the rows were fetched since the last Close.
func (s *Screen[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Load fetches every row from the remote API.
func (s *Screen[T]) Load(ctx context.Context) ([]T, error) {
	ctx, gen, done := s.begin(ctx)
	defer done()

	rows, err := api.List[T](ctx, s.client, s.desc.Endpoint)
	if err != nil {
		if !s.current(gen) {
			return nil, ErrClosed
		}
		s.fail(err, fmt.Sprintf("Failed to load %s", s.desc.Name))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, ErrClosed
	}
	s.rows = rows
	s.loaded = true
	return append([]T(nil), rows...), nil
}

// Search sets the filter used by Rows, Page and Export.
func (s *Screen[T]) Search(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.ToLower(strings.TrimSpace(q))
}

// Rows returns the rows matching the current search.
func (s *Screen[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered()
}

// Page returns page n (1-based) of the filtered rows. Out of range pages
// are clamped.
func (s *Screen[T]) Page(n int) Page[T] {
	rows := s.Rows()
	pages := (len(rows) + s.pageSize - 1) / s.pageSize
	if pages == 0 {
		pages = 1
	}
	n = max(1, min(n, pages))

	start := min((n-1)*s.pageSize, len(rows))
	end := min(start+s.pageSize, len(rows))
	return Page[T]{
		Items: rows[start:end],
		Page:  n,
		Pages: pages,
		Total: len(rows),
	}
}

func (s *Screen[T]) Create(ctx context.Context, v T) (*T, error) {
	if s.desc.ReadOnly {
		return nil, ErrReadOnly
	}
	if err := s.validate(v); err != nil {
		return nil, err
	}

	ctx, gen, done := s.begin(ctx)
	defer done()

	created, err := api.Create(ctx, s.client, s.desc.Endpoint, v)
	if err != nil {
		if !s.current(gen) {
			return nil, ErrClosed
		}
		s.fail(err, fmt.Sprintf("Failed to create %s", s.desc.Label))
		return nil, err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.rows = append(s.rows, *created)
	s.mu.Unlock()

	s.changed(fmt.Sprintf("%s created", capitalize(s.desc.Label)))
	return created, nil
}

func (s *Screen[T]) Update(ctx context.Context, id primitive.ObjectID, v T) (*T, error) {
	if err := s.validate(v); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "update", func(ctx context.Context) (*T, error) {
		return api.Update(ctx, s.client, s.desc.Endpoint, id, v)
	})
}

// Toggle flips the row between Active and Inactive.
func (s *Screen[T]) Toggle(ctx context.Context, id primitive.ObjectID) (*T, error) {
	if s.desc.ReadOnly {
		return nil, ErrReadOnly
	}
	return s.mutate(ctx, id, "toggle", func(ctx context.Context) (*T, error) {
		return api.Toggle[T](ctx, s.client, s.desc.Endpoint, id)
	})
}

// Delete removes a row. Nothing is sent unless confirmed is set.
func (s *Screen[T]) Delete(ctx context.Context, id primitive.ObjectID, confirmed bool) error {
	if s.desc.ReadOnly {
		return ErrReadOnly
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	ctx, gen, done := s.begin(ctx)
	defer done()

	if err := api.Delete(ctx, s.client, s.desc.Endpoint, id); err != nil {
		if !s.current(gen) {
			return ErrClosed
		}
		if errors.Is(err, api.ErrNotFound) {
			return s.stale(ctx, gen)
		}
		s.fail(err, fmt.Sprintf("Failed to delete %s", s.desc.Label))
		return err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrClosed
	}
	i := s.indexOf(id)
	if i >= 0 {
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
	}
	s.mu.Unlock()

	s.changed(fmt.Sprintf("%s deleted", capitalize(s.desc.Label)))
	return nil
}

// Close cancels in-flight calls and forgets the rows. The screen can be
// loaded again afterwards.
func (s *Screen[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	s.life, s.cancel = context.WithCancel(context.Background())
	s.gen++
	s.rows = nil
	s.loaded = false
	s.query = ""
}

// mutate runs a call that returns the new version of row id and swaps it
// into the list.
func (s *Screen[T]) mutate(ctx context.Context, id primitive.ObjectID, verb string, call func(context.Context) (*T, error)) (*T, error) {
	ctx, gen, done := s.begin(ctx)
	defer done()

	updated, err := call(ctx)
	if err != nil {
		if !s.current(gen) {
			return nil, ErrClosed
		}
		if errors.Is(err, api.ErrNotFound) {
			return nil, s.stale(ctx, gen)
		}
		s.fail(err, fmt.Sprintf("Failed to %s %s", verb, s.desc.Label))
		return nil, err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	i := s.indexOf(id)
	if i < 0 && s.loaded {
		s.mu.Unlock()
		return nil, s.stale(ctx, gen)
	}
	if i >= 0 {
		s.rows[i] = *updated
	}
	s.mu.Unlock()

	s.changed(fmt.Sprintf("%s updated", capitalize(s.desc.Label)))
	return updated, nil
}

// stale refetches the list after a row went missing and reports
// ErrStaleRow. The mutation is not retried.
func (s *Screen[T]) stale(ctx context.Context, gen uint64) error {
	s.log.Warn("row disappeared, reloading")
	s.notices.Notify(notify.LevelWarning, staleRowMessage)

	rows, err := api.List[T](ctx, s.client, s.desc.Endpoint)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrClosed
	}
	if err == nil {
		s.rows = rows
		s.loaded = true
	}
	return ErrStaleRow
}

// begin derives a context that is cancelled either by the caller or by
// Close, and records the generation the call belongs to.
func (s *Screen[T]) begin(ctx context.Context) (context.Context, uint64, func()) {
	s.mu.Lock()
	life, gen := s.life, s.gen
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(life, cancel)
	return ctx, gen, func() {
		stop()
		cancel()
	}
}

func (s *Screen[T]) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

func (s *Screen[T]) validate(v T) error {
	if err := s.desc.Validate(v); err != nil {
		s.notices.Notify(notify.LevelError, err.Error())
		return err
	}
	return nil
}

func (s *Screen[T]) fail(err error, fallback string) {
	s.log.WithError(err).Warn(fallback)
	s.notices.Notify(notify.LevelError, api.Message(err, fallback))
}

func (s *Screen[T]) changed(message string) {
	s.notices.Notify(notify.LevelSuccess, message)
	for _, f := range s.onChange {
		f()
	}
}

// filtered must be called with mu held.
func (s *Screen[T]) filtered() []T {
	out := make([]T, 0, len(s.rows))
	for _, row := range s.rows {
		if s.query == "" || strings.Contains(strings.ToLower(s.desc.Search(row)), s.query) {
			out = append(out, row)
		}
	}
	return out
}

// indexOf must be called with mu held.
func (s *Screen[T]) indexOf(id primitive.ObjectID) int {
	for i, row := range s.rows {
		if row.GetID() == id {
			return i
		}
	}
	return -1
}

// --- Type-erased access for the handler ---

func (s *Screen[T]) list(ctx context.Context, reload bool, q string, page int) (any, error) {
	if reload || !s.Loaded() {
		if _, err := s.Load(ctx); err != nil {
			return nil, err
		}
	}
	s.Search(q)
	return s.Page(page), nil
}

func (s *Screen[T]) create(ctx context.Context, raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(ErrInvalidBody, "decode %s: %v", s.desc.Label, err)
	}
	return s.Create(ctx, v)
}

func (s *Screen[T]) update(ctx context.Context, id primitive.ObjectID, raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(ErrInvalidBody, "decode %s: %v", s.desc.Label, err)
	}
	return s.Update(ctx, id, v)
}

func (s *Screen[T]) toggle(ctx context.Context, id primitive.ObjectID) (any, error) {
	return s.Toggle(ctx, id)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

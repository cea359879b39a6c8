package wishlist

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/app/storage"
	"github.com/mytheresa/storefront/models"
)

var ErrAlreadyExists = errors.New("wishlist: product already saved")

const (
	msgAlreadyExists = "Product is already in your wishlist"
	msgAdded         = "Added to wishlist"
)

// Store keeps whole product snapshots keyed by product id and mirrors them
// to durable storage after every change.
type Store struct {
	mu       sync.Mutex
	products []models.Product

	storage storage.Storage
	notices notify.Notifier
	log     logrus.FieldLogger
}

func NewStore(s storage.Storage, n notify.Notifier, log logrus.FieldLogger) *Store {
	st := &Store{
		storage: s,
		notices: n,
		log:     log.WithField("store", "wishlist"),
	}
	st.Reload()
	return st
}

// Reload replaces the in-memory list with what storage holds.
func (s *Store) Reload() {
	var products []models.Product
	if err := storage.LoadJSON(s.storage, storage.KeyWishlist, &products); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).Warn("discarding unreadable wishlist")
		}
		products = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
	for _, p := range products {
		if !p.ID.IsZero() && s.indexOf(p.ID) < 0 {
			s.products = append(s.products, p)
		}
	}
}

// Add saves a snapshot of p. A product already present is left as is and
// an informational notice is raised instead.
func (s *Store) Add(p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		s.notices.Notify(notify.LevelInfo, msgAlreadyExists)
		return ErrAlreadyExists
	}
	s.products = append(s.products, p)
	s.persist()
	s.notices.Notify(notify.LevelSuccess, msgAdded)
	return nil
}

func (s *Store) Remove(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.products = append(s.products[:i], s.products[i+1:]...)
	}
	s.persist()
}

func (s *Store) Contains(id primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

func (s *Store) Items() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) indexOf(id primitive.ObjectID) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist() {
	products := s.products
	if products == nil {
		products = []models.Product{}
	}
	if err := storage.SaveJSON(s.storage, storage.KeyWishlist, products); err != nil {
		s.log.WithError(err).Error("failed to save wishlist")
	}
}

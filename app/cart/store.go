package cart

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/app/storage"
	"github.com/mytheresa/storefront/models"
)

var (
	ErrMissingSelection = errors.New("cart: color and size must be selected")
	ErrInvalidSelection = errors.New("cart: selection does not match the product")
	ErrOutOfStock       = errors.New("cart: size is out of stock")
	ErrItemNotFound     = errors.New("cart: line item not found")
)

const (
	msgSelectColor      = "Please select a color"
	msgSelectSize       = "Please select a size"
	msgInvalidSelection = "The selected options are not available for this product"
	msgOutOfStock       = "This size is out of stock"
	msgAdded            = "Added to cart"
)

// Store owns the cart line items and mirrors them to durable storage after
// every change.
type Store struct {
	mu        sync.Mutex
	items     []models.CartItem
	panelOpen bool

	storage    storage.Storage
	selections *catalog.Selections
	notices    notify.Notifier
	log        logrus.FieldLogger
}

// NewStore creates the cart and loads any previously saved lines.
func NewStore(s storage.Storage, sel *catalog.Selections, n notify.Notifier, log logrus.FieldLogger) *Store {
	st := &Store{
		storage:    s,
		selections: sel,
		notices:    n,
		log:        log.WithField("store", "cart"),
	}
	st.Reload()
	return st
}

// Reload drops the in-memory lines and reads them back from storage.
// Absent or corrupt data leaves the cart empty.
func (s *Store) Reload() {
	var items []models.CartItem
	err := storage.LoadJSON(s.storage, storage.KeyCart, &items)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		items = nil
	case err != nil:
		s.log.WithError(err).Warn("discarding unreadable cart")
		items = nil
	}

	valid := items[:0]
	for _, it := range items {
		if it.ID != "" && it.Quantity > 0 {
			valid = append(valid, it)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = valid
	s.panelOpen = false
}

// Add puts the product's selected color and size in the cart. Adding a
// line that already exists increases its quantity by one. A missing or
// invalid selection leaves the cart untouched and raises one notice.
func (s *Store) Add(p *models.Product) (models.CartItem, error) {
	sel := s.selections.Get(p.ID)
	switch {
	case sel.ColorID.IsZero():
		s.notices.Notify(notify.LevelWarning, msgSelectColor)
		return models.CartItem{}, ErrMissingSelection
	case sel.SizeID.IsZero():
		s.notices.Notify(notify.LevelWarning, msgSelectSize)
		return models.CartItem{}, ErrMissingSelection
	}

	variant, size, err := s.selections.Resolve(p)
	if err != nil || variant == nil || size == nil {
		s.log.WithField("product", p.ID.Hex()).Warn("selection does not match product data")
		s.notices.Notify(notify.LevelError, msgInvalidSelection)
		return models.CartItem{}, ErrInvalidSelection
	}
	if !catalog.SizeAvailable(size) {
		s.notices.Notify(notify.LevelWarning, msgOutOfStock)
		return models.CartItem{}, ErrOutOfStock
	}

	key := models.LineKey(p.ID, variant.ColorID(), size.SizeID())

	s.mu.Lock()
	defer s.mu.Unlock()

	var line models.CartItem
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity++
		line = s.items[i]
	} else {
		line = models.CartItem{
			ID:        key,
			ProductID: p.ID,
			ColorID:   variant.ColorID(),
			SizeID:    size.SizeID(),
			Name:      p.Name,
			Image:     variant.FirstImage(),
			ColorName: variant.ColorName(),
			SizeName:  size.SizeName(),
			Price:     size.Price,
			OldPrice:  size.OldPrice,
			Quantity:  1,
		}
		s.items = append(s.items, line)
	}
	s.persist()
	s.panelOpen = true
	s.notices.Notify(notify.LevelSuccess, msgAdded)
	return line, nil
}

func (s *Store) Increment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	s.items[i].Quantity++
	s.persist()
	return nil
}

// Decrement lowers a line's quantity; a line reaching zero is removed.
func (s *Store) Decrement(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if s.items[i].Quantity <= 1 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items[i].Quantity--
	}
	s.persist()
	return nil
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persist()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
}

// RemoveLines takes the quantities of ordered off the matching lines. A
// line left with nothing is removed; lines added or raised since the
// snapshot keep the difference.
func (s *Store) RemoveLines(ordered []models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ordered {
		i := s.indexOf(o.ID)
		if i < 0 {
			continue
		}
		if s.items[i].Quantity <= o.Quantity {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity -= o.Quantity
		}
	}
	s.persist()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Total())
	}
	return total
}

func (s *Store) Savings() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Savings())
	}
	return total
}

func (s *Store) PanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelOpen
}

func (s *Store) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = false
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *Store) persist() {
	items := s.items
	if items == nil {
		items = []models.CartItem{}
	}
	if err := storage.SaveJSON(s.storage, storage.KeyCart, items); err != nil {
		s.log.WithError(err).Error("failed to save cart")
	}
}

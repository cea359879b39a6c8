package catalog

import (
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/models"
)

var (
	// ErrUnavailable is returned when the chosen color or size is out of stock.
	ErrUnavailable = errors.New("option is out of stock")
	// ErrStaleSelection is returned when a selected option is no longer part
	// of the product. The selection for that product is reset.
	ErrStaleSelection = errors.New("selected option no longer exists")
)

const (
	msgColorUnavailable = "This color is out of stock"
	msgSizeUnavailable  = "This size is out of stock"
	msgStaleSelection   = "The selected option is no longer available"
)

// Selection is the color and size the user picked for one product.
type Selection struct {
	ColorID primitive.ObjectID `json:"colorId"`
	SizeID  primitive.ObjectID `json:"sizeId"`
}

func (s Selection) Complete() bool {
	return !s.ColorID.IsZero() && !s.SizeID.IsZero()
}

// Selections holds the per-product choices apart from the catalog data, so
// two views of the same product never share state through the product.
type Selections struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]Selection
	notices notify.Notifier
}

func NewSelections(n notify.Notifier) *Selections {
	return &Selections{
		byID:    make(map[primitive.ObjectID]Selection),
		notices: n,
	}
}

func (s *Selections) Get(productID primitive.ObjectID) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[productID]
}

// SelectColor picks a color. An out-of-stock color is rejected with a
// warning and leaves the selection unchanged. A kept size that is not sold
// in the new color is dropped.
func (s *Selections) SelectColor(p *models.Product, colorID primitive.ObjectID) error {
	return s.Select(p, colorID, primitive.NilObjectID)
}

// SelectSize picks a size of the currently shown variant.
func (s *Selections) SelectSize(p *models.Product, sizeID primitive.ObjectID) error {
	return s.Select(p, primitive.NilObjectID, sizeID)
}

// Select applies a color and/or size choice; a zero id leaves that part
// alone. The size is checked against the variant the color choice leads
// to. Both are checked before anything is stored, so a rejected choice
// leaves the selection as it was.
func (s *Selections) Select(p *models.Product, colorID, sizeID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.byID[p.ID]
	if !colorID.IsZero() {
		v := findVariant(p, colorID)
		if v == nil {
			return s.stale(p.ID)
		}
		if !VariantAvailable(v) {
			s.notices.Notify(notify.LevelWarning, msgColorUnavailable)
			return ErrUnavailable
		}
		sel.ColorID = colorID
		if size := findSize(v, sel.SizeID); size == nil || !SizeAvailable(size) {
			sel.SizeID = primitive.NilObjectID
		}
	}
	if !sizeID.IsZero() {
		size := findSize(ResolveVariant(p, sel.ColorID), sizeID)
		if size == nil {
			return s.stale(p.ID)
		}
		if !SizeAvailable(size) {
			s.notices.Notify(notify.LevelWarning, msgSizeUnavailable)
			return ErrUnavailable
		}
		sel.SizeID = sizeID
	}

	s.byID[p.ID] = sel
	return nil
}

// Resolve looks up the selected variant and size by exact id. If either no
// longer exists in p, the selection is reset and ErrStaleSelection returned.
// An incomplete selection resolves to nil without error.
func (s *Selections) Resolve(p *models.Product) (*models.Variant, *models.SizeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.byID[p.ID]
	if !ok || !sel.Complete() {
		return nil, nil, nil
	}
	v := findVariant(p, sel.ColorID)
	if v == nil {
		delete(s.byID, p.ID)
		return nil, nil, ErrStaleSelection
	}
	size := findSize(v, sel.SizeID)
	if size == nil {
		delete(s.byID, p.ID)
		return nil, nil, ErrStaleSelection
	}
	return v, size, nil
}

func (s *Selections) Clear(productID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, productID)
}

func (s *Selections) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[primitive.ObjectID]Selection)
}

func (s *Selections) stale(productID primitive.ObjectID) error {
	delete(s.byID, productID)
	s.notices.Notify(notify.LevelWarning, msgStaleSelection)
	return ErrStaleSelection
}

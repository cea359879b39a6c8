package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/addresses"
	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/models"
)

var (
	ErrEmptyCart      = errors.New("checkout: cart is empty")
	ErrNoAddress      = errors.New("checkout: no delivery address selected")
	ErrNoPayment      = errors.New("checkout: no payment method selected")
	ErrInvalidPayment = errors.New("checkout: unknown payment method")
	ErrInProgress     = errors.New("checkout: an order is already being placed")
)

const (
	msgEmptyCart     = "Your cart is empty"
	msgNoAddress     = "Please select a delivery address"
	msgNoPayment     = "Please select a payment method"
	msgOrderPlaced   = "Order placed successfully"
	msgOrderFailed   = "Failed to place order"
	msgBadPayment    = "Unsupported payment method"
	msgAddressFailed = "Failed to load delivery address"
)

type OrderProvider interface {
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResult, error)
	MyOrders(ctx context.Context) ([]models.Order, error)
}

type AddressFinder interface {
	Find(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
}

type Cart interface {
	Items() []models.CartItem
	RemoveLines(ordered []models.CartItem)
}

// Confirmation is where the user goes after a successful order.
type Confirmation struct {
	OrderID     string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Redirect    string          `json:"redirect"`
}

// Composer gathers the cart, a delivery address and a payment method into
// an order and submits it.
type Composer struct {
	orders     OrderProvider
	cart       Cart
	addresses  AddressFinder
	notices    notify.Notifier
	clearDelay time.Duration
	log        logrus.FieldLogger

	mu         sync.Mutex
	addressID  primitive.ObjectID
	payment    string
	submitting bool
	pending    *time.Timer
	ordered    []models.CartItem
	last       *Confirmation
}

func NewComposer(o OrderProvider, c Cart, a AddressFinder, n notify.Notifier, clearDelay time.Duration, log logrus.FieldLogger) *Composer {
	return &Composer{
		orders:     o,
		cart:       c,
		addresses:  a,
		notices:    n,
		clearDelay: clearDelay,
		log:        log.WithField("component", "checkout"),
	}
}

// SelectAddress picks the delivery address by id. The zero id clears it.
func (c *Composer) SelectAddress(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addressID = id
}

func (c *Composer) SelectPayment(method string) error {
	switch method {
	case "", models.PaymentCOD, models.PaymentOnline:
	default:
		c.notices.Notify(notify.LevelWarning, msgBadPayment)
		return ErrInvalidPayment
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment = method
	return nil
}

func (c *Composer) Selection() (primitive.ObjectID, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addressID, c.payment
}

// LastConfirmation returns the most recent successful order, if any.
func (c *Composer) LastConfirmation() *Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Build checks the preconditions and assembles the request body. Each
// missing precondition raises its own notice; nothing is sent.
func (c *Composer) Build(ctx context.Context) (models.OrderRequest, error) {
	return c.build(ctx, c.cart.Items())
}

func (c *Composer) build(ctx context.Context, items []models.CartItem) (models.OrderRequest, error) {
	addressID, payment := c.Selection()

	switch {
	case len(items) == 0:
		c.notices.Notify(notify.LevelWarning, msgEmptyCart)
		return models.OrderRequest{}, ErrEmptyCart
	case addressID.IsZero():
		c.notices.Notify(notify.LevelWarning, msgNoAddress)
		return models.OrderRequest{}, ErrNoAddress
	case payment == "":
		c.notices.Notify(notify.LevelWarning, msgNoPayment)
		return models.OrderRequest{}, ErrNoPayment
	}

	address, err := c.addresses.Find(ctx, addressID)
	if err != nil {
		if errors.Is(err, addresses.ErrNotFound) {
			// Deleted since it was picked.
			c.SelectAddress(primitive.NilObjectID)
			c.notices.Notify(notify.LevelWarning, msgNoAddress)
			return models.OrderRequest{}, ErrNoAddress
		}
		c.notices.Notify(notify.LevelError, api.Message(err, msgAddressFailed))
		return models.OrderRequest{}, err
	}

	return composeRequest(items, *address, payment), nil
}

// Submit places the order. On success the ordered lines leave the cart
// after the configured delay, and until then another Submit is refused; on
// failure the cart and selections are left as they were so the user can
// retry.
func (c *Composer) Submit(ctx context.Context) (*Confirmation, error) {
	c.mu.Lock()
	if c.submitting || c.pending != nil {
		c.mu.Unlock()
		return nil, ErrInProgress
	}
	c.submitting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	items := c.cart.Items()
	req, err := c.build(ctx, items)
	if err != nil {
		return nil, err
	}

	res, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		c.log.WithError(err).Warn("order rejected")
		c.notices.Notify(notify.LevelError, api.Message(err, msgOrderFailed))
		return nil, err
	}

	conf := &Confirmation{
		OrderID:     res.OrderID,
		TotalAmount: res.TotalAmount,
		Redirect:    "/orders/" + res.OrderID,
	}
	c.log.WithFields(logrus.Fields{
		"order_id": res.OrderID,
		"total":    res.TotalAmount.String(),
		"lines":    len(req.Items),
	}).Info("order placed")
	c.notices.Notify(notify.LevelSuccess, msgOrderPlaced)

	c.mu.Lock()
	c.last = conf
	c.scheduleClear(items)
	c.mu.Unlock()
	return conf, nil
}

// Orders lists the signed-in user's orders.
func (c *Composer) Orders(ctx context.Context) ([]models.Order, error) {
	return c.orders.MyOrders(ctx)
}

// Flush removes the ordered lines of a pending clear immediately.
func (c *Composer) Flush() {
	c.mu.Lock()
	t, ordered := c.pending, c.ordered
	c.pending, c.ordered = nil, nil
	c.mu.Unlock()
	if t != nil {
		t.Stop()
		c.cart.RemoveLines(ordered)
	}
}

// scheduleClear must be called with mu held.
func (c *Composer) scheduleClear(ordered []models.CartItem) {
	if c.clearDelay <= 0 {
		c.cart.RemoveLines(ordered)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(c.clearDelay, func() {
		c.mu.Lock()
		if c.pending != t {
			c.mu.Unlock()
			return
		}
		c.pending, c.ordered = nil, nil
		c.mu.Unlock()
		c.cart.RemoveLines(ordered)
	})
	c.pending, c.ordered = t, ordered
}

// composeRequest keeps only identifiers from the cart lines; the server
// prices the order itself.
func composeRequest(items []models.CartItem, address models.Address, payment string) models.OrderRequest {
	req := models.OrderRequest{
		DeliveryAddress: address,
		PaymentMethod:   payment,
		Items:           make([]models.OrderItemRequest, len(items)),
	}
	for i, it := range items {
		req.Items[i] = models.OrderItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Variant: models.VariantRef{
				ColorID: it.ColorID,
				SizeID:  it.SizeID,
			},
		}
	}
	return req
}

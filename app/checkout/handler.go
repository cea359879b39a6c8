package checkout

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/models"
)

type CheckoutHandler struct {
	composer *Composer
}

func NewCheckoutHandler(c *Composer) *CheckoutHandler {
	return &CheckoutHandler{composer: c}
}

type State struct {
	AddressID     primitive.ObjectID `json:"addressId"`
	PaymentMethod string             `json:"paymentMethod"`
	Confirmation  *Confirmation      `json:"confirmation,omitempty"`
}

func (h *CheckoutHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, h.state())
}

// HandleSelect updates the address and payment choice without placing the
// order. Omitted fields are left unchanged.
func (h *CheckoutHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if !h.applySelection(w, r, false) {
		return
	}
	web.JSON(w, http.StatusOK, h.state())
}

// HandlePlaceOrder applies an optional selection from the body and
// submits the order. An empty body places the order as selected.
func (h *CheckoutHandler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	if !h.applySelection(w, r, true) {
		return
	}

	conf, err := h.composer.Submit(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			web.Error(w, http.StatusBadRequest, msgEmptyCart)
		case errors.Is(err, ErrNoAddress):
			web.Error(w, http.StatusBadRequest, msgNoAddress)
		case errors.Is(err, ErrNoPayment):
			web.Error(w, http.StatusBadRequest, msgNoPayment)
		case errors.Is(err, ErrInProgress):
			web.Error(w, http.StatusConflict, "An order is already being placed")
		default:
			web.APIError(w, r, err, msgOrderFailed)
		}
		return
	}
	web.JSON(w, http.StatusCreated, conf)
}

func (h *CheckoutHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.composer.Orders(r.Context())
	if err != nil {
		web.APIError(w, r, err, "Failed to load orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	web.JSON(w, http.StatusOK, orders)
}

func (h *CheckoutHandler) applySelection(w http.ResponseWriter, r *http.Request, optional bool) bool {
	var input struct {
		AddressID     *string `json:"addressId"`
		PaymentMethod *string `json:"paymentMethod"`
	}
	if err := web.Decode(r, &input); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if input.AddressID != nil {
		id := primitive.NilObjectID
		if *input.AddressID != "" {
			var err error
			if id, err = primitive.ObjectIDFromHex(*input.AddressID); err != nil {
				web.Error(w, http.StatusBadRequest, "Invalid addressId")
				return false
			}
		}
		h.composer.SelectAddress(id)
	}
	if input.PaymentMethod != nil {
		if err := h.composer.SelectPayment(*input.PaymentMethod); err != nil {
			web.Error(w, http.StatusBadRequest, msgBadPayment)
			return false
		}
	}
	return true
}

func (h *CheckoutHandler) state() State {
	addressID, payment := h.composer.Selection()
	return State{
		AddressID:     addressID,
		PaymentMethod: payment,
		Confirmation:  h.composer.LastConfirmation(),
	}
}

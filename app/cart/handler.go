package cart

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/models"
)

type Response struct {
	Items     []models.CartItem `json:"items"`
	Count     int               `json:"count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Savings   decimal.Decimal   `json:"savings"`
	PanelOpen bool              `json:"panelOpen"`
}

type CartHandler struct {
	store    *Store
	products catalog.ProductProvider
}

func NewCartHandler(s *Store, p catalog.ProductProvider) *CartHandler {
	return &CartHandler{store: s, products: p}
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, h.response())
}

// HandleAdd adds the product's current selection to the cart.
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID string `json:"productId"`
	}
	if err := web.Decode(r, &input); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	id, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid productId")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		web.APIError(w, r, err, "Failed to retrieve product")
		return
	}

	if _, err := h.store.Add(product); err != nil {
		switch {
		case errors.Is(err, ErrMissingSelection), errors.Is(err, ErrOutOfStock):
			web.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInvalidSelection):
			web.Error(w, http.StatusConflict, err.Error())
		default:
			web.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	web.JSON(w, http.StatusCreated, h.response())
}

func (h *CartHandler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Increment(r.PathValue("id")); err != nil {
		web.Error(w, http.StatusNotFound, "Item not found")
		return
	}
	web.JSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) HandleDecrement(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Decrement(r.PathValue("id")); err != nil {
		web.Error(w, http.StatusNotFound, "Item not found")
		return
	}
	web.JSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.store.Remove(r.PathValue("id"))
	web.JSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	web.JSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) HandleClosePanel(w http.ResponseWriter, r *http.Request) {
	h.store.ClosePanel()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) response() Response {
	return Response{
		Items:     h.store.Items(),
		Count:     h.store.Count(),
		Subtotal:  h.store.Subtotal(),
		Savings:   h.store.Savings(),
		PanelOpen: h.store.PanelOpen(),
	}
}

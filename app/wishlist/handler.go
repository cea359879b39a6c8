package wishlist

import (
	"net/http"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/models"
)

type Response struct {
	Products []models.Product `json:"products"`
}

type WishlistHandler struct {
	store    *Store
	products catalog.ProductProvider
}

func NewWishlistHandler(s *Store, p catalog.ProductProvider) *WishlistHandler {
	return &WishlistHandler{store: s, products: p}
}

func (h *WishlistHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, Response{Products: h.store.Items()})
}

func (h *WishlistHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.Add(*product); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			web.Error(w, http.StatusConflict, msgAlreadyExists)
			return
		}
		web.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	web.JSON(w, http.StatusCreated, Response{Products: h.store.Items()})
}

func (h *WishlistHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	h.store.Remove(id)
	web.JSON(w, http.StatusOK, Response{Products: h.store.Items()})
}

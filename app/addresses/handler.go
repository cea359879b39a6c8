package addresses

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/internal/validation"
	"github.com/mytheresa/storefront/models"
)

type AddressHandler struct {
	book *Book
}

func NewAddressHandler(b *Book) *AddressHandler {
	return &AddressHandler{book: b}
}

func (h *AddressHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.book.List(r.Context())
	if err != nil {
		web.APIError(w, r, err, "Failed to load addresses")
		return
	}
	if list == nil {
		list = []models.Address{}
	}
	web.JSON(w, http.StatusOK, list)
}

func (h *AddressHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input models.Address
	if err := web.Decode(r, &input); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	created, err := h.book.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err, "Failed to add address")
		return
	}
	web.JSON(w, http.StatusCreated, created)
}

func (h *AddressHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid address id")
		return
	}
	var input models.Address
	if err := web.Decode(r, &input); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	input.ID = id
	updated, err := h.book.Update(r.Context(), input)
	if err != nil {
		writeError(w, r, err, "Failed to update address")
		return
	}
	web.JSON(w, http.StatusOK, updated)
}

func (h *AddressHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid address id")
		return
	}
	if err := h.book.Delete(r.Context(), id); err != nil {
		web.APIError(w, r, err, "Failed to delete address")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		web.Error(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}
	web.APIError(w, r, err, fallback)
}

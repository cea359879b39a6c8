package admin

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/internal/validation"
	"github.com/mytheresa/storefront/models"
)

// Resource is a Screen with its entity type erased, as the handler routes
// by path segment.
type Resource interface {
	Name() string
	Search(q string)
	Export(w io.Writer) error
	Delete(ctx context.Context, id primitive.ObjectID, confirmed bool) error
	Close()
	Loaded() bool

	list(ctx context.Context, reload bool, q string, page int) (any, error)
	create(ctx context.Context, raw []byte) (any, error)
	update(ctx context.Context, id primitive.ObjectID, raw []byte) (any, error)
	toggle(ctx context.Context, id primitive.ObjectID) (any, error)
}

type AdminHandler struct {
	screens map[string]Resource
	orders  *OrderScreen
}

func NewAdminHandler(orders *OrderScreen, screens ...Resource) *AdminHandler {
	h := &AdminHandler{
		screens: map[string]Resource{orders.Name(): orders},
		orders:  orders,
	}
	for _, s := range screens {
		h.screens[s.Name()] = s
	}
	return h
}

// CloseAll closes every screen, dropping rows fetched for the previous user.
func (h *AdminHandler) CloseAll() {
	for _, s := range h.screens {
		s.Close()
	}
}

// Register mounts the admin routes on mux behind guard.
func (h *AdminHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	route := func(pattern string, f http.HandlerFunc) {
		mux.Handle(pattern, guard(f))
	}
	route("GET /admin/{entity}", h.HandleList)
	route("POST /admin/{entity}", h.HandleCreate)
	route("PUT /admin/{entity}/{id}", h.HandleUpdate)
	route("DELETE /admin/{entity}/{id}", h.HandleDelete)
	route("PATCH /admin/{entity}/{id}/toggle", h.HandleToggle)
	route("GET /admin/{entity}/export.xlsx", h.HandleExport)
	route("POST /admin/{entity}/close", h.HandleClose)
	route("PUT /admin/orders/{id}/status", h.HandleOrderStatus)
}

// HandleList answers one page of the entity list. The rows are fetched on
// first use and again with ?reload=1.
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.screen(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := screen.list(r.Context(), q.Get("reload") == "1", q.Get("q"), web.QueryInt(r, "page", 1))
	if err != nil {
		h.writeError(w, r, err, "Failed to load "+screen.Name())
		return
	}
	web.JSON(w, http.StatusOK, page)
}

func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.screen(w, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	created, err := screen.create(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, err, "Failed to create entry")
		return
	}
	web.JSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	screen, id, ok := h.screenAndID(w, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	updated, err := screen.update(r.Context(), id, raw)
	if err != nil {
		h.writeError(w, r, err, "Failed to update entry")
		return
	}
	web.JSON(w, http.StatusOK, updated)
}

// HandleDelete requires ?confirm=true; without it nothing is sent to the
// remote API.
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	screen, id, ok := h.screenAndID(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := screen.Delete(r.Context(), id, confirmed); err != nil {
		h.writeError(w, r, err, "Failed to delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	screen, id, ok := h.screenAndID(w, r)
	if !ok {
		return
	}
	updated, err := screen.toggle(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to change status")
		return
	}
	web.JSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) HandleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, http.StatusNotFound, "Order not found")
		return
	}
	var input struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := web.Decode(r, &input); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		h.writeError(w, r, err, "Failed to update order status")
		return
	}
	web.JSON(w, http.StatusOK, order)
}

// HandleExport downloads the filtered rows as a spreadsheet.
func (h *AdminHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.screen(w, r)
	if !ok {
		return
	}
	if _, err := screen.list(r.Context(), false, r.URL.Query().Get("q"), 1); err != nil {
		h.writeError(w, r, err, "Failed to load "+screen.Name())
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+screen.Name()+".xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := screen.Export(w); err != nil {
		web.Logger(r.Context()).WithError(err).Error("export failed")
		web.Error(w, http.StatusInternalServerError, "Failed to write Excel file")
	}
}

// HandleClose is called when the UI leaves a screen.
func (h *AdminHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.screen(w, r)
	if !ok {
		return
	}
	screen.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) screen(w http.ResponseWriter, r *http.Request) (Resource, bool) {
	screen, ok := h.screens[r.PathValue("entity")]
	if !ok {
		web.Error(w, http.StatusNotFound, "Unknown entity")
		return nil, false
	}
	return screen, true
}

func (h *AdminHandler) screenAndID(w http.ResponseWriter, r *http.Request) (Resource, primitive.ObjectID, bool) {
	screen, ok := h.screen(w, r)
	if !ok {
		return nil, primitive.NilObjectID, false
	}
	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, http.StatusNotFound, "Entry not found")
		return nil, primitive.NilObjectID, false
	}
	return screen, id, true
}

func (h *AdminHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *validation.Error
	switch {
	case errors.Is(err, ErrInvalidBody):
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
	case errors.As(err, &verr):
		web.Error(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, ErrNotConfirmed):
		web.Error(w, http.StatusPreconditionRequired, "Please confirm the deletion")
	case errors.Is(err, ErrReadOnly):
		web.Error(w, http.StatusMethodNotAllowed, "Not supported for this entity")
	case errors.Is(err, ErrStaleRow):
		web.Error(w, http.StatusConflict, staleRowMessage)
	case errors.Is(err, ErrClosed):
		web.Error(w, http.StatusConflict, "The screen was closed")
	default:
		web.APIError(w, r, err, fallback)
	}
}

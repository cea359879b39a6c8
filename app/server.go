// Package app wires the storefront gateway: storage, remote API client,
// the client-side stores and their HTTP handlers.
package app

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mytheresa/storefront/app/addresses"
	"github.com/mytheresa/storefront/app/admin"
	"github.com/mytheresa/storefront/app/cart"
	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/checkout"
	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/app/session"
	"github.com/mytheresa/storefront/app/storage"
	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/app/wishlist"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/internal/cache"
	"github.com/mytheresa/storefront/internal/config"
)

// NewServer builds the gateway handler. The returned cleanup flushes
// pending work and closes the durable store; call it once the HTTP server
// has stopped.
func NewServer(cfg *config.Config, log logrus.FieldLogger) (http.Handler, func(), error) {
	durable, err := storage.Open(cfg.StorageDSN)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open storage")
	}
	log.WithField("dsn", cfg.StorageDSN).Info("durable storage opened")

	notices := notify.NewQueue(log, 0)

	// The client reads its bearer token from the session, which in turn
	// logs in through the client.
	sess := session.New(nil, durable, storage.NewMemory(), notices, log)
	client := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Tokens:  sess,
		Log:     log,
	})
	sess.SetAuth(client)

	productCache := cache.New(cfg.CatalogCacheTTL)
	products := catalog.NewCachedProducts(client, productCache, cfg.CatalogCacheTTL)
	selections := catalog.NewSelections(notices)

	cartStore := cart.NewStore(durable, selections, notices, log)
	wishlistStore := wishlist.NewStore(durable, notices, log)
	book := addresses.NewBook(client, notices)
	composer := checkout.NewComposer(client, cartStore, book, notices, cfg.CheckoutClearDelay, log)

	productScreen := admin.NewScreen(admin.ProductScreen, client, notices, cfg.AdminPageSize, log)
	productScreen.OnChange(products.Invalidate)
	adminHandler := admin.NewAdminHandler(
		admin.NewOrderScreen(client, notices, cfg.AdminPageSize, log),
		admin.NewScreen(admin.CategoryScreen, client, notices, cfg.AdminPageSize, log),
		admin.NewScreen(admin.BrandScreen, client, notices, cfg.AdminPageSize, log),
		admin.NewScreen(admin.ColorScreen, client, notices, cfg.AdminPageSize, log),
		admin.NewScreen(admin.SizeScreen, client, notices, cfg.AdminPageSize, log),
		admin.NewScreen(admin.TagScreen, client, notices, cfg.AdminPageSize, log),
		productScreen,
	)

	sess.OnLogout(func() {
		cartStore.Reload()
		wishlistStore.Reload()
		selections.Reset()
		composer.SelectAddress(primitive.NilObjectID)
		_ = composer.SelectPayment("")
		adminHandler.CloseAll()
	})

	catHandler := catalog.NewCatalogHandler(products, selections)
	cartHandler := cart.NewCartHandler(cartStore, products)
	wishHandler := wishlist.NewWishlistHandler(wishlistStore, products)
	addrHandler := addresses.NewAddressHandler(book)
	checkoutHandler := checkout.NewCheckoutHandler(composer)
	sessHandler := session.NewSessionHandler(sess)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /notices", notices.HandleDrain)

	mux.HandleFunc("POST /auth/login", sessHandler.HandleLogin)
	mux.HandleFunc("POST /auth/logout", sessHandler.HandleLogout)
	mux.HandleFunc("GET /auth/me", sessHandler.HandleMe)

	mux.HandleFunc("GET /catalog", catHandler.HandleGet)
	mux.HandleFunc("GET /catalog/{id}", catHandler.HandleGetProduct)
	mux.HandleFunc("POST /catalog/{id}/selection", catHandler.HandleSelect)

	mux.HandleFunc("GET /cart", cartHandler.HandleGet)
	mux.HandleFunc("POST /cart", cartHandler.HandleAdd)
	mux.HandleFunc("DELETE /cart", cartHandler.HandleClear)
	mux.HandleFunc("POST /cart/close", cartHandler.HandleClosePanel)
	mux.HandleFunc("POST /cart/{id}/increment", cartHandler.HandleIncrement)
	mux.HandleFunc("POST /cart/{id}/decrement", cartHandler.HandleDecrement)
	mux.HandleFunc("DELETE /cart/{id}", cartHandler.HandleRemove)

	mux.HandleFunc("GET /wishlist", wishHandler.HandleGet)
	mux.HandleFunc("POST /wishlist", wishHandler.HandleAdd)
	mux.HandleFunc("DELETE /wishlist/{id}", wishHandler.HandleRemove)

	authed := func(pattern string, f http.HandlerFunc) {
		mux.Handle(pattern, sess.RequireLogin(f))
	}
	authed("GET /addresses", addrHandler.HandleList)
	authed("POST /addresses", addrHandler.HandleCreate)
	authed("PUT /addresses/{id}", addrHandler.HandleUpdate)
	authed("DELETE /addresses/{id}", addrHandler.HandleDelete)

	authed("GET /checkout", checkoutHandler.HandleGet)
	authed("PUT /checkout", checkoutHandler.HandleSelect)
	authed("POST /checkout", checkoutHandler.HandlePlaceOrder)
	authed("GET /orders", checkoutHandler.HandleOrders)

	adminHandler.Register(mux, sess.RequireAdmin)

	var handler http.Handler = mux
	handler = &web.LogHandler{Log: log, Next: handler}
	handler = otelhttp.NewHandler(handler, "storefront")

	cleanup := func() {
		composer.Flush()
		productCache.Close()
		if err := durable.Close(); err != nil {
			log.WithError(err).Warn("failed to close storage")
		}
	}
	return handler, cleanup, nil
}

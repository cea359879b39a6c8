package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/mytheresa/storefront/internal/apitest"
	"github.com/mytheresa/storefront/models"
)

func newAdminMux(t *testing.T) (*http.ServeMux, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t, "")
	srv.Seed("colors", models.Color{Name: "Red", Status: models.StatusActive}, models.Color{Name: "Blue", Status: models.StatusActive})
	srv.Seed("orders", models.Order{Status: models.OrderStatusPending, PaymentMethod: models.PaymentCOD})

	log, _ := test.NewNullLogger()
	client := newClient(t, srv)
	notices := &MockNotifier{}
	handler := NewAdminHandler(
		NewOrderScreen(client, notices, 10, log),
		NewScreen(ColorScreen, client, notices, 10, log),
		NewScreen(ProductScreen, client, notices, 10, log),
	)

	mux := http.NewServeMux()
	handler.Register(mux, func(h http.Handler) http.Handler { return h })
	return mux, srv
}

func TestAdminHandler(t *testing.T) {
	mux, srv := newAdminMux(t)
	colors := apitest.Records[models.Color](srv, "colors")
	orders := apitest.Records[models.Order](srv, "orders")
	red := colors[0].ID.Hex()

	testCases := []struct {
		name               string
		method             string
		url                string
		body               string
		expectedStatusCode int
		expectedError      string
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "List with search",
			method:             "GET",
			url:                "/admin/colors?q=bl",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var page Page[models.Color]
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
				assert.Equal(t, 1, page.Total)
				assert.Equal(t, "Blue", page.Items[0].Name)
			},
		},
		{
			name:               "Unknown entity",
			method:             "GET",
			url:                "/admin/widgets",
			expectedStatusCode: http.StatusNotFound,
			expectedError:      "Unknown entity",
		},
		{
			name:               "Create",
			method:             "POST",
			url:                "/admin/colors",
			body:               `{"name":"Teal","hexCode":"#008080"}`,
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var c models.Color
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
				assert.Equal(t, "Teal", c.Name)
				assert.False(t, c.ID.IsZero())
			},
		},
		{
			name:               "Create with invalid form",
			method:             "POST",
			url:                "/admin/colors",
			body:               `{"hexCode":"#008080"}`,
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedError:      "name is required",
		},
		{
			name:               "Create product without variants",
			method:             "POST",
			url:                "/admin/products",
			body:               `{"name":"Coat"}`,
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedError:      "category is required; brand is required; variants needs at least 1 entries",
		},
		{
			name:               "Create with malformed JSON",
			method:             "POST",
			url:                "/admin/colors",
			body:               `{`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid JSON body",
		},
		{
			name:               "Create order is not supported",
			method:             "POST",
			url:                "/admin/orders",
			body:               `{}`,
			expectedStatusCode: http.StatusMethodNotAllowed,
		},
		{
			name:               "Toggle",
			method:             "PATCH",
			url:                "/admin/colors/" + red + "/toggle",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var c models.Color
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
				assert.Equal(t, models.StatusInactive, c.Status)
			},
		},
		{
			name:               "Delete without confirmation",
			method:             "DELETE",
			url:                "/admin/colors/" + red,
			expectedStatusCode: http.StatusPreconditionRequired,
			expectedError:      "Please confirm the deletion",
		},
		{
			name:               "Order status",
			method:             "PUT",
			url:                "/admin/orders/" + orders[0].ID.Hex() + "/status",
			body:               `{"status":"shipped"}`,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var o models.Order
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&o))
				assert.Equal(t, models.OrderStatusShipped, o.Status)
			},
		},
		{
			name:               "Order status unknown",
			method:             "PUT",
			url:                "/admin/orders/" + orders[0].ID.Hex() + "/status",
			body:               `{"status":"lost"}`,
			expectedStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:               "Delete confirmed",
			method:             "DELETE",
			url:                "/admin/colors/" + red + "?confirm=true",
			expectedStatusCode: http.StatusNoContent,
		},
		{
			name:               "Delete again is a stale row",
			method:             "DELETE",
			url:                "/admin/colors/" + red + "?confirm=true",
			expectedStatusCode: http.StatusConflict,
			expectedError:      staleRowMessage,
		},
		{
			name:               "Export",
			method:             "GET",
			url:                "/admin/colors/export.xlsx",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "attachment; filename=colors.xlsx", rec.Header().Get("Content-Disposition"))
				book, err := xlsx.OpenBinary(rec.Body.Bytes())
				require.NoError(t, err)
				assert.Len(t, book.Sheets[0].Rows, 3, "Header, Blue and Teal")
			},
		},
		{
			name:               "Close",
			method:             "POST",
			url:                "/admin/colors/close",
			expectedStatusCode: http.StatusNoContent,
		},
	}

	// Cases run in order against the same screens.
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			req := httptest.NewRequest(tc.method, tc.url, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			// Act
			mux.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedError != "" {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, tc.expectedError, errResp["error"])
			}
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusBadRequest, "Please select a size")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var errResp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "Please select a size", errResp["error"])
}

func TestQueryInt(t *testing.T) {
	testCases := []struct {
		url      string
		expected int
	}{
		{"/x", 7},
		{"/x?n=3", 3},
		{"/x?n=-2", -2},
		{"/x?n=abc", 7},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			assert.Equal(t, tc.expected, QueryInt(req, "n", 7))
		})
	}
}

func TestPathIDAndDecode(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodPost, "/x/"+id.Hex(), strings.NewReader(`{"name":"Blue"}`))
	req.SetPathValue("id", id.Hex())

	got, err := PathID(req)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, Decode(req, &body))
	assert.Equal(t, "Blue", body.Name)

	bad := httptest.NewRequest(http.MethodPost, "/x/nope", strings.NewReader(`{`))
	bad.SetPathValue("id", "nope")
	_, err = PathID(bad)
	assert.Error(t, err)
	assert.Error(t, Decode(bad, &body))
}

func TestLogHandler(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	var seenID string
	var seenLog logrus.FieldLogger
	h := &LogHandler{Log: log, Next: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		seenLog = Logger(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, seenID, 36)
	assert.NotNil(t, seenLog)
	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "request complete", last.Message)
	assert.Equal(t, http.StatusTeapot, last.Data["http.resp.status"])
	assert.Equal(t, seenID, last.Data["http.req.id"])
}

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStores(t *testing.T) {
	durable, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { durable.Close() })

	stores := map[string]Storage{
		"memory":  NewMemory(),
		"durable": durable,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set("k", []byte("one")))
			require.NoError(t, s.Set("k", []byte("two")))
			got, err := s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "two", string(got))

			require.NoError(t, s.Remove("k"))
			_, err = s.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)

			// Removing twice is fine.
			assert.NoError(t, s.Remove("k"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	testCases := []struct {
		name      string
		raw       []byte
		expectErr bool
		notFound  bool
		expected  payload
	}{
		{
			name:     "Round trip",
			raw:      []byte(`{"name":"cart","count":2}`),
			expected: payload{Name: "cart", Count: 2},
		},
		{
			name:      "Corrupt data",
			raw:       []byte(`{"name":`),
			expectErr: true,
		},
		{
			name:      "Missing key",
			expectErr: true,
			notFound:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			s := NewMemory()
			if tc.raw != nil {
				require.NoError(t, s.Set(KeyCart, tc.raw))
			}

			// Act
			var got payload
			err := LoadJSON(s, KeyCart, &got)

			// Assert
			if tc.expectErr {
				assert.Error(t, err)
				assert.Equal(t, tc.notFound, err == ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	s := NewMemory()
	require.NoError(t, SaveJSON(s, KeyWishlist, payload{Name: "w", Count: 1}))
	var back payload
	require.NoError(t, LoadJSON(s, KeyWishlist, &back))
	assert.Equal(t, payload{Name: "w", Count: 1}, back)
}

func TestDurableSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, SaveJSON(first, KeyToken, "abc"))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	var token string
	require.NoError(t, LoadJSON(second, KeyToken, &token))
	assert.Equal(t, "abc", token)

	keys, err := second.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyToken}, keys)
}

func TestMemoryCopiesValues(t *testing.T) {
	s := NewMemory()
	buf := []byte("abc")
	require.NoError(t, s.Set("k", buf))
	buf[0] = 'x'

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

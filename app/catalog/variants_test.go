package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/internal/apitest"
	"github.com/mytheresa/storefront/internal/cache"
	"github.com/mytheresa/storefront/models"
)

func TestResolveVariant(t *testing.T) {
	p := apitest.NewProduct("Tee", []string{"Red", "Green", "Blue"}, apitest.SizeSpec{Name: "M", Price: 10, Quantity: 1})

	testCases := []struct {
		name     string
		colorID  primitive.ObjectID
		expected primitive.ObjectID
	}{
		{"Matching color", p.Variants[1].ColorID(), p.Variants[1].ColorID()},
		{"Last color", p.Variants[2].ColorID(), p.Variants[2].ColorID()},
		{"No selection falls back to first", primitive.NilObjectID, p.Variants[0].ColorID()},
		{"Unknown color falls back to first", primitive.NewObjectID(), p.Variants[0].ColorID()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := ResolveVariant(&p, tc.colorID)
			require.NotNil(t, v)
			assert.Equal(t, tc.expected, v.ColorID())
		})
	}

	assert.Nil(t, ResolveVariant(&models.Product{}, primitive.NewObjectID()))
	assert.Nil(t, ResolveVariant(nil, primitive.NilObjectID))
}

func TestResolveSize(t *testing.T) {
	p := apitest.NewProduct("Tee", []string{"Red"},
		apitest.SizeSpec{Name: "S", Price: 10, Quantity: 1},
		apitest.SizeSpec{Name: "L", Price: 12, Quantity: 1},
	)
	v := &p.Variants[0]

	assert.Equal(t, "L", ResolveSize(v, v.Sizes[1].SizeID()).SizeName())
	assert.Equal(t, "S", ResolveSize(v, primitive.NilObjectID).SizeName())
	assert.Equal(t, "S", ResolveSize(v, primitive.NewObjectID()).SizeName())
	assert.Nil(t, ResolveSize(&models.Variant{}, primitive.NilObjectID))
	assert.Nil(t, ResolveSize(nil, primitive.NilObjectID))
}

func TestAvailability(t *testing.T) {
	testCases := []struct {
		name             string
		quantities       []int
		expectedVariant  bool
		expectedFirstOne bool
	}{
		{"Quantity zero is unavailable", []int{0}, false, false},
		{"Quantity one is available", []int{1}, true, true},
		{"Negative quantity is unavailable", []int{-1}, false, false},
		{"One size in stock keeps the color available", []int{0, 0, 2}, true, false},
		{"No sizes at all", nil, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := &models.Variant{}
			for _, q := range tc.quantities {
				v.Sizes = append(v.Sizes, models.SizeEntry{Size: &models.Size{ID: primitive.NewObjectID()}, Quantity: q})
			}
			assert.Equal(t, tc.expectedVariant, VariantAvailable(v))
			if len(v.Sizes) > 0 {
				assert.Equal(t, tc.expectedFirstOne, SizeAvailable(&v.Sizes[0]))
			}
		})
	}
	assert.False(t, VariantAvailable(nil))
	assert.False(t, SizeAvailable(nil))
}

func TestSelectionsBoundary(t *testing.T) {
	testCases := []struct {
		name        string
		quantity    int
		expectErr   error
		expectNotes int
	}{
		{"Quantity 0 is rejected", 0, ErrUnavailable, 1},
		{"Quantity 1 is accepted", 1, nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			p := apitest.NewProduct("Tee", []string{"Red"},
				apitest.SizeSpec{Name: "S", Price: 10, Quantity: tc.quantity},
				apitest.SizeSpec{Name: "M", Price: 10, Quantity: 5},
			)
			notices := &MockNotifier{}
			sel := NewSelections(notices)
			require.NoError(t, sel.SelectColor(&p, p.Variants[0].ColorID()))
			before := sel.Get(p.ID)

			// Act
			err := sel.SelectSize(&p, p.Variants[0].Sizes[0].SizeID())

			// Assert
			assert.Equal(t, tc.expectErr, err)
			assert.Len(t, notices.Notices, tc.expectNotes)
			if tc.expectErr != nil {
				assert.Equal(t, before, sel.Get(p.ID), "Rejected selection must not change state")
				assert.Equal(t, notify.LevelWarning, notices.Notices[0].Level)
			} else {
				assert.Equal(t, p.Variants[0].Sizes[0].SizeID(), sel.Get(p.ID).SizeID)
			}
		})
	}
}

func TestSelectionsColorChangeDropsUnsoldSize(t *testing.T) {
	p := apitest.NewProduct("Tee", []string{"Red", "Blue"},
		apitest.SizeSpec{Name: "S", Price: 10, Quantity: 2},
		apitest.SizeSpec{Name: "M", Price: 10, Quantity: 2},
	)
	// Blue has no stock in S.
	p.Variants[1].Sizes[0].Quantity = 0
	sel := NewSelections(&MockNotifier{})

	require.NoError(t, sel.SelectColor(&p, p.Variants[0].ColorID()))
	require.NoError(t, sel.SelectSize(&p, p.Variants[0].Sizes[0].SizeID()))
	require.NoError(t, sel.SelectColor(&p, p.Variants[1].ColorID()))
	assert.True(t, sel.Get(p.ID).SizeID.IsZero())

	require.NoError(t, sel.SelectSize(&p, p.Variants[1].Sizes[1].SizeID()))
	require.NoError(t, sel.SelectColor(&p, p.Variants[0].ColorID()))
	assert.Equal(t, p.Variants[0].Sizes[1].SizeID(), sel.Get(p.ID).SizeID, "Size sold in both colors is kept")
}

func TestSelectionsColorAndSizeTogether(t *testing.T) {
	p := apitest.NewProduct("Tee", []string{"Red", "Blue"},
		apitest.SizeSpec{Name: "S", Price: 10, Quantity: 2},
		apitest.SizeSpec{Name: "M", Price: 10, Quantity: 2},
	)
	p.Variants[1].Sizes[0].Quantity = 0
	red, blue := p.Variants[0], p.Variants[1]
	notices := &MockNotifier{}
	sel := NewSelections(notices)
	require.NoError(t, sel.Select(&p, red.ColorID(), red.Sizes[1].SizeID()))
	before := sel.Get(p.ID)

	err := sel.Select(&p, blue.ColorID(), blue.Sizes[0].SizeID())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, before, sel.Get(p.ID), "Color is not kept when the size is rejected")
	require.Len(t, notices.Notices, 1)
	assert.Equal(t, msgSizeUnavailable, notices.Notices[0].Message)

	require.NoError(t, sel.Select(&p, blue.ColorID(), blue.Sizes[1].SizeID()))
	assert.Equal(t, Selection{ColorID: blue.ColorID(), SizeID: blue.Sizes[1].SizeID()}, sel.Get(p.ID))
}

func TestSelectionsKeptApartPerProduct(t *testing.T) {
	a := apitest.NewProduct("A", []string{"Red", "Blue"}, apitest.SizeSpec{Name: "S", Price: 1, Quantity: 1})
	b := apitest.NewProduct("B", []string{"Red", "Blue"}, apitest.SizeSpec{Name: "S", Price: 1, Quantity: 1})
	sel := NewSelections(&MockNotifier{})

	require.NoError(t, sel.SelectColor(&a, a.Variants[1].ColorID()))

	assert.Equal(t, a.Variants[1].ColorID(), sel.Get(a.ID).ColorID)
	assert.True(t, sel.Get(b.ID).ColorID.IsZero())
}

func TestSelectionsResolve(t *testing.T) {
	p := apitest.NewProduct("Tee", []string{"Red"}, apitest.SizeSpec{Name: "S", Price: 10, Quantity: 1})
	sel := NewSelections(&MockNotifier{})

	v, s, err := sel.Resolve(&p)
	assert.NoError(t, err)
	assert.Nil(t, v, "Incomplete selection resolves to nothing")
	assert.Nil(t, s)

	require.NoError(t, sel.SelectColor(&p, p.Variants[0].ColorID()))
	require.NoError(t, sel.SelectSize(&p, p.Variants[0].Sizes[0].SizeID()))

	v, s, err = sel.Resolve(&p)
	require.NoError(t, err)
	assert.Equal(t, p.Variants[0].ColorID(), v.ColorID())
	assert.Equal(t, "S", s.SizeName())

	// The size disappears from the catalog data.
	refreshed := p
	refreshed.Variants = []models.Variant{p.Variants[0]}
	refreshed.Variants[0].Sizes = []models.SizeEntry{{Size: &models.Size{ID: primitive.NewObjectID(), Name: "XL"}, Quantity: 3}}

	_, _, err = sel.Resolve(&refreshed)
	assert.ErrorIs(t, err, ErrStaleSelection)
	assert.Equal(t, Selection{}, sel.Get(p.ID), "Stale selection is reset")
}

func TestCachedProducts(t *testing.T) {
	shirt := apitest.NewProduct("Linen Shirt", []string{"Blue"}, apitest.SizeSpec{Name: "M", Price: 10, Quantity: 1})
	repo := &MockProductRepo{SourceProducts: []models.Product{shirt}}
	c := cache.New(time.Minute)
	defer c.Close()
	products := NewCachedProducts(repo, c, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := products.ListProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, repo.listCalls)

	got, err := products.GetProduct(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", got.Name)
	repo.lastCalledID = primitive.NilObjectID
	_, err = products.GetProduct(ctx, shirt.ID)
	require.NoError(t, err)
	assert.True(t, repo.lastCalledID.IsZero(), "Second read is served from cache")

	products.Invalidate()
	_, err = products.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

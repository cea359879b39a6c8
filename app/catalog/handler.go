package catalog

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/web"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

type Product struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Brand    string             `json:"brand,omitempty"`
	Category *Category          `json:"category,omitempty"`
	Price    decimal.Decimal    `json:"price"`
	Image    string             `json:"image,omitempty"`
	InStock  bool               `json:"inStock"`
}

type Size struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	SKU       string             `json:"sku"`
	Price     decimal.Decimal    `json:"price"`
	OldPrice  decimal.Decimal    `json:"oldPrice"`
	Quantity  int                `json:"quantity"`
	Available bool               `json:"available"`
}

type Variant struct {
	ColorID   primitive.ObjectID `json:"colorId"`
	ColorName string             `json:"colorName"`
	HexCode   string             `json:"hexCode,omitempty"`
	Images    []string           `json:"images"`
	Available bool               `json:"available"`
	Sizes     []Size             `json:"sizes"`
}

// Shown is the variant and size currently displayed, after fallback.
type Shown struct {
	ColorID  primitive.ObjectID `json:"colorId"`
	SizeID   primitive.ObjectID `json:"sizeId"`
	Price    decimal.Decimal    `json:"price"`
	OldPrice decimal.Decimal    `json:"oldPrice"`
	Image    string             `json:"image,omitempty"`
}

type ProductDetail struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Brand       string             `json:"brand,omitempty"`
	Category    *Category          `json:"category,omitempty"`
	Tags        []string           `json:"tags"`
	Description []string           `json:"description"`
	Variants    []Variant          `json:"variants"`
	Selection   Selection          `json:"selection"`
	Shown       *Shown             `json:"shown,omitempty"`
}

type CatalogHandler struct {
	repo       ProductProvider
	selections *Selections
}

func NewCatalogHandler(r ProductProvider, s *Selections) *CatalogHandler {
	return &CatalogHandler{
		repo:       r,
		selections: s,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := web.QueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := web.QueryInt(r, "limit", 10)
	if limit < 1 {
		limit = 1
	} else if limit > 100 {
		limit = 100
	}

	// Parse filters
	filters := Filters{
		Category: r.URL.Query().Get("category"),
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := decimal.NewFromString(priceStr); err == nil {
			filters.PriceLessThan = &val
		}
	}

	all, err := h.repo.ListProducts(r.Context())
	if err != nil {
		web.APIError(w, r, err, "failed to get products")
		return
	}

	matched := filterProducts(all, filters)
	page := paginate(matched, offset, limit)

	products := make([]Product, len(page))
	for i, p := range page {
		price, _ := lowestPrice(p)
		first := ResolveVariant(&p, primitive.NilObjectID)
		products[i] = Product{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    brandName(p),
			Category: categoryOf(p),
			Price:    price,
			Image:    first.FirstImage(),
			InStock:  inStock(p),
		}
	}

	web.JSON(w, http.StatusOK, Response{
		Total:    len(matched),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	web.JSON(w, http.StatusOK, h.detail(product))
}

// HandleSelect records a color and/or size choice for a product.
func (h *CatalogHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ColorID string `json:"colorId"`
		SizeID  string `json:"sizeId"`
	}
	if err := web.Decode(r, &input); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.ColorID == "" && input.SizeID == "" {
		web.Error(w, http.StatusBadRequest, "Missing colorId or sizeId")
		return
	}

	var colorID, sizeID primitive.ObjectID
	if input.ColorID != "" {
		var err error
		if colorID, err = primitive.ObjectIDFromHex(input.ColorID); err != nil {
			web.Error(w, http.StatusBadRequest, "Invalid colorId")
			return
		}
	}
	if input.SizeID != "" {
		var err error
		if sizeID, err = primitive.ObjectIDFromHex(input.SizeID); err != nil {
			web.Error(w, http.StatusBadRequest, "Invalid sizeId")
			return
		}
	}

	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	if err := h.selections.Select(product, colorID, sizeID); err != nil {
		writeSelectionError(w, err)
		return
	}

	web.JSON(w, http.StatusOK, h.detail(product))
}

func (h *CatalogHandler) loadProduct(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, err := web.PathID(r)
	if err != nil {
		web.Error(w, http.StatusNotFound, "Product not found")
		return nil, false
	}
	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Product not found")
			return nil, false
		}
		web.APIError(w, r, err, "Failed to retrieve product")
		return nil, false
	}
	return product, true
}

func (h *CatalogHandler) detail(p *models.Product) ProductDetail {
	sel := h.selections.Get(p.ID)

	variants := make([]Variant, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		sizes := make([]Size, len(v.Sizes))
		for j := range v.Sizes {
			s := &v.Sizes[j]
			sizes[j] = Size{
				ID:        s.SizeID(),
				Name:      s.SizeName(),
				SKU:       s.SKU,
				Price:     s.Price,
				OldPrice:  s.OldPrice,
				Quantity:  s.Quantity,
				Available: SizeAvailable(s),
			}
		}
		var hex string
		if v.Color != nil {
			hex = v.Color.HexCode
		}
		variants[i] = Variant{
			ColorID:   v.ColorID(),
			ColorName: v.ColorName(),
			HexCode:   hex,
			Images:    v.Images,
			Available: VariantAvailable(v),
			Sizes:     sizes,
		}
	}

	resp := ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       brandName(*p),
		Category:    categoryOf(*p),
		Tags:        make([]string, 0, len(p.Tags)),
		Description: p.Description,
		Variants:    variants,
		Selection:   sel,
	}
	for _, t := range p.Tags {
		resp.Tags = append(resp.Tags, t.Name)
	}
	if resp.Description == nil {
		resp.Description = []string{}
	}

	if v := ResolveVariant(p, sel.ColorID); v != nil {
		shown := &Shown{ColorID: v.ColorID(), Image: v.FirstImage()}
		if s := ResolveSize(v, sel.SizeID); s != nil {
			shown.SizeID = s.SizeID()
			shown.Price = s.Price
			shown.OldPrice = s.OldPrice
		}
		resp.Shown = shown
	}
	return resp
}

func writeSelectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnavailable) || errors.Is(err, ErrStaleSelection):
		web.Error(w, http.StatusConflict, err.Error())
	default:
		web.Error(w, http.StatusInternalServerError, err.Error())
	}
}

func brandName(p models.Product) string {
	if p.Brand == nil {
		return ""
	}
	return p.Brand.Name
}

func categoryOf(p models.Product) *Category {
	if p.Category == nil {
		return nil
	}
	return &Category{ID: p.Category.ID, Name: p.Category.Name}
}

package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/internal/validation"
	"github.com/mytheresa/storefront/models"
)

const maxImages = 4

var CategoryScreen = Descriptor[models.Category]{
	Name:     "categories",
	Label:    "category",
	Endpoint: api.CategoriesPath,
	Columns: []Column[models.Category]{
		{"ID", func(c models.Category) string { return c.ID.Hex() }},
		{"Name", func(c models.Category) string { return c.Name }},
		{"Parent", func(c models.Category) string {
			if c.Parent == nil {
				return ""
			}
			return c.Parent.Hex()
		}},
		{"Status", func(c models.Category) string { return string(c.Status) }},
	},
	Search: func(c models.Category) string { return c.Name },
}

var BrandScreen = Descriptor[models.Brand]{
	Name:     "brands",
	Label:    "brand",
	Endpoint: api.BrandsPath,
	Columns: []Column[models.Brand]{
		{"ID", func(b models.Brand) string { return b.ID.Hex() }},
		{"Name", func(b models.Brand) string { return b.Name }},
		{"Logo", func(b models.Brand) string { return b.Logo }},
		{"Status", func(b models.Brand) string { return string(b.Status) }},
	},
	Search: func(b models.Brand) string { return b.Name },
}

var ColorScreen = Descriptor[models.Color]{
	Name:     "colors",
	Label:    "color",
	Endpoint: api.ColorsPath,
	Columns: []Column[models.Color]{
		{"ID", func(c models.Color) string { return c.ID.Hex() }},
		{"Name", func(c models.Color) string { return c.Name }},
		{"Hex", func(c models.Color) string { return c.HexCode }},
		{"Status", func(c models.Color) string { return string(c.Status) }},
	},
	Search: func(c models.Color) string { return c.Name + " " + c.HexCode },
}

var SizeScreen = Descriptor[models.Size]{
	Name:     "sizes",
	Label:    "size",
	Endpoint: api.SizesPath,
	Columns: []Column[models.Size]{
		{"ID", func(s models.Size) string { return s.ID.Hex() }},
		{"Name", func(s models.Size) string { return s.Name }},
		{"Status", func(s models.Size) string { return string(s.Status) }},
	},
	Search: func(s models.Size) string { return s.Name },
}

var TagScreen = Descriptor[models.Tag]{
	Name:     "tags",
	Label:    "tag",
	Endpoint: api.TagsPath,
	Columns: []Column[models.Tag]{
		{"ID", func(t models.Tag) string { return t.ID.Hex() }},
		{"Name", func(t models.Tag) string { return t.Name }},
		{"Status", func(t models.Tag) string { return string(t.Status) }},
	},
	Search: func(t models.Tag) string { return t.Name },
}

var ProductScreen = Descriptor[models.Product]{
	Name:     "products",
	Label:    "product",
	Endpoint: api.ProductsPath,
	Columns: []Column[models.Product]{
		{"ID", func(p models.Product) string { return p.ID.Hex() }},
		{"Name", func(p models.Product) string { return p.Name }},
		{"Brand", func(p models.Product) string {
			if p.Brand == nil {
				return ""
			}
			return p.Brand.Name
		}},
		{"Category", func(p models.Product) string {
			if p.Category == nil {
				return ""
			}
			return p.Category.Name
		}},
		{"Variants", func(p models.Product) string { return strconv.Itoa(len(p.Variants)) }},
		{"Stock", func(p models.Product) string { return strconv.Itoa(totalStock(p)) }},
		{"Status", func(p models.Product) string { return string(p.Status) }},
	},
	Search: func(p models.Product) string {
		parts := []string{p.Name}
		if p.Brand != nil {
			parts = append(parts, p.Brand.Name)
		}
		if p.Category != nil {
			parts = append(parts, p.Category.Name)
		}
		for _, v := range p.Variants {
			for _, s := range v.Sizes {
				parts = append(parts, s.SKU)
			}
		}
		return strings.Join(parts, " ")
	},
	Validate: validateProduct,
}

var OrderScreenDescriptor = Descriptor[models.Order]{
	Name:     "orders",
	Label:    "order",
	Endpoint: api.OrdersPath,
	ReadOnly: true,
	Columns: []Column[models.Order]{
		{"ID", func(o models.Order) string { return o.ID.Hex() }},
		{"Customer", func(o models.Order) string {
			if o.User == nil {
				return ""
			}
			return o.User.Email
		}},
		{"Placed", func(o models.Order) string {
			if o.CreatedAt.IsZero() {
				return ""
			}
			return o.CreatedAt.Format("2006-01-02 15:04:05")
		}},
		{"Items", func(o models.Order) string { return strconv.Itoa(len(o.Items)) }},
		{"Total", func(o models.Order) string { return o.TotalAmount.StringFixed(2) }},
		{"Payment", func(o models.Order) string { return o.PaymentMethod }},
		{"Status", func(o models.Order) string { return string(o.Status) }},
	},
	Search: func(o models.Order) string {
		parts := []string{o.ID.Hex(), string(o.Status), o.PaymentMethod, o.DeliveryAddress.Fullname}
		if o.User != nil {
			parts = append(parts, o.User.Fullname, o.User.Email)
		}
		return strings.Join(parts, " ")
	},
	Validate: func(models.Order) error { return nil },
}

// validateProduct checks a product form. Product references nested
// entities by id only, so tag validation of the whole tree does not fit.
func validateProduct(p models.Product) error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Category == nil || p.Category.ID.IsZero() {
		problems = append(problems, "category is required")
	}
	if p.Brand == nil || p.Brand.ID.IsZero() {
		problems = append(problems, "brand is required")
	}
	if len(p.Variants) == 0 {
		problems = append(problems, "variants needs at least 1 entries")
	}

	seenColors := make(map[primitive.ObjectID]bool)
	for i, v := range p.Variants {
		at := fmt.Sprintf("variants[%d]", i)
		if v.Color == nil || v.Color.ID.IsZero() {
			problems = append(problems, at+".color is required")
		} else if seenColors[v.Color.ID] {
			problems = append(problems, at+".color is used by another variant")
		} else {
			seenColors[v.Color.ID] = true
		}
		if len(v.Images) > maxImages {
			problems = append(problems, fmt.Sprintf("%s.images allows at most %d entries", at, maxImages))
		}
		if len(v.Sizes) == 0 {
			problems = append(problems, at+".sizes needs at least 1 entries")
		}
		for j, s := range v.Sizes {
			sat := fmt.Sprintf("%s.sizes[%d]", at, j)
			if s.Size == nil || s.Size.ID.IsZero() {
				problems = append(problems, sat+".size is required")
			}
			if !s.Price.IsPositive() {
				problems = append(problems, sat+".price must be greater than 0")
			}
			if s.OldPrice.IsNegative() {
				problems = append(problems, sat+".oldPrice must be 0 or more")
			}
			if s.Quantity < 0 {
				problems = append(problems, sat+".quantity must be 0 or more")
			}
		}
	}
	return validation.Fail(problems...)
}

func totalStock(p models.Product) int {
	n := 0
	for _, v := range p.Variants {
		for _, s := range v.Sizes {
			n += s.Quantity
		}
	}
	return n
}

// OrderScreen is the order list. Orders are placed by customers, so the
// back-office only moves them through their statuses.
type OrderScreen struct {
	*Screen[models.Order]
}

func NewOrderScreen(c *api.Client, n notify.Notifier, pageSize int, log logrus.FieldLogger) *OrderScreen {
	return &OrderScreen{Screen: NewScreen(OrderScreenDescriptor, c, n, pageSize, log)}
}

func (s *OrderScreen) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		err := validation.Fail(fmt.Sprintf("status %q is not a valid order status", status))
		s.notices.Notify(notify.LevelError, err.Error())
		return nil, err
	}
	return s.mutate(ctx, id, "update", func(ctx context.Context) (*models.Order, error) {
		return s.client.UpdateOrderStatus(ctx, id, status)
	})
}

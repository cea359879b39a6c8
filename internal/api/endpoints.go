package api

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/models"
)

// Remote collection endpoints.
const (
	ProductsPath   = "/api/products"
	CategoriesPath = "/api/categories"
	BrandsPath     = "/api/brands"
	ColorsPath     = "/api/colors"
	SizesPath      = "/api/sizes"
	TagsPath       = "/api/tags"
	OrdersPath     = "/api/orders"
	AddressPath    = "/api/address"
)

// List fetches every record of a collection.
func List[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Get[T any](ctx context.Context, c *Client, endpoint string, id primitive.ObjectID) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, endpoint+"/"+id.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts v and returns the record as stored by the server.
func Create[T any](ctx context.Context, c *Client, endpoint string, v T) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, endpoint, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func Update[T any](ctx context.Context, c *Client, endpoint string, id primitive.ObjectID, v T) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodPut, endpoint+"/"+id.Hex(), v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func Delete(ctx context.Context, c *Client, endpoint string, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, endpoint+"/"+id.Hex(), nil, nil)
}

// Toggle flips the Active/Inactive status of a record.
func Toggle[T any](ctx context.Context, c *Client, endpoint string, id primitive.ObjectID) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodPatch, endpoint+"/toggle/"+id.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	return List[models.Product](ctx, c, ProductsPath)
}

func (c *Client) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return Get[models.Product](ctx, c, ProductsPath, id)
}

func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResult, error) {
	var out models.OrderResult
	if err := c.do(ctx, http.MethodPost, OrdersPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders lists the signed-in user's orders.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	return List[models.Order](ctx, c, OrdersPath+"/my")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	body := map[string]models.OrderStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, OrdersPath+"/"+id.Hex()+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	return List[models.Address](ctx, c, AddressPath)
}

func (c *Client) CreateAddress(ctx context.Context, a models.Address) (*models.Address, error) {
	return Create(ctx, c, AddressPath, a)
}

func (c *Client) UpdateAddress(ctx context.Context, a models.Address) (*models.Address, error) {
	return Update(ctx, c, AddressPath, a.ID, a)
}

func (c *Client) DeleteAddress(ctx context.Context, id primitive.ObjectID) error {
	return Delete(ctx, c, AddressPath, id)
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Package apitest runs an in-memory stand-in for the remote Catalog/Order
// API so client code can be exercised end to end in tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/models"
)

// Collections served with the generic CRUD routes.
var Collections = []string{"products", "categories", "brands", "colors", "sizes", "tags", "orders", "address"}

type account struct {
	password string
	token    string
	user     models.User
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	collections map[string][]map[string]any
	accounts    map[string]account
	tokens      map[string]string
	orderStatus int
	orderMsg    string
	delay       time.Duration
	lastOrder   *models.OrderRequest
	calls       []string
}

// New starts a fake API that requires token, or one handed out by
// AddAccount, as bearer on every route but login. An empty token disables
// the check. The server is closed when the
// test ends.
func New(t testing.TB, token string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		token:       token,
		collections: make(map[string][]map[string]any),
		accounts:    make(map[string]account),
		tokens:      make(map[string]string),
	}

	r := gin.New()
	r.Use(s.record, s.slow)
	r.POST("/api/auth/login", s.login)

	authed := r.Group("/api", s.auth)
	authed.GET("/auth/profile", s.profile)
	authed.POST("/orders", s.createOrder)
	authed.GET("/orders/my", s.list("orders"))
	authed.PUT("/orders/:id/status", s.updateOrderStatus)
	for _, name := range Collections {
		g := authed.Group("/" + name)
		g.GET("", s.list(name))
		g.GET("/:id", s.get(name))
		if name != "orders" {
			g.POST("", s.create(name))
		}
		g.PUT("/:id", s.update(name))
		g.DELETE("/:id", s.remove(name))
		g.PATCH("/toggle/:id", s.toggle(name))
	}

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed stores records in a collection. Records without an id get one.
func (s *Server) Seed(collection string, records ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		m := toMap(rec)
		if id, _ := m["_id"].(string); id == "" {
			m["_id"] = primitive.NewObjectID().Hex()
		}
		s.collections[collection] = append(s.collections[collection], m)
	}
}

// AddAccount registers credentials; logging in with them yields token.
// Each account needs its own token for the profile route to tell them
// apart.
func (s *Server) AddAccount(email, password, token string, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = email
	s.accounts[email] = account{password: password, token: token, user: user}
	if token != "" {
		s.tokens[token] = email
	}
}

// FailOrders makes order creation answer status with message. An empty
// message sends no body.
func (s *Server) FailOrders(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderStatus = status
	s.orderMsg = message
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func (s *Server) LastOrder() *models.OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOrder
}

// Calls returns "METHOD path" for every request received so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Records decodes a collection into T.
func Records[T any](s *Server, collection string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.collections[collection]))
	for _, m := range s.collections[collection] {
		var v T
		raw, _ := json.Marshal(m)
		_ = json.Unmarshal(raw, &v)
		out = append(out, v)
	}
	return out
}

// --- Middleware ---

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.calls = append(s.calls, c.Request.Method+" "+c.Request.URL.Path)
	s.mu.Unlock()
	c.Next()
}

func (s *Server) slow(c *gin.Context) {
	s.mu.Lock()
	d := s.delay
	s.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	c.Next()
}

func (s *Server) auth(c *gin.Context) {
	if s.token == "" {
		c.Next()
		return
	}
	bearer := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	_, issued := s.tokens[bearer]
	s.mu.Unlock()
	if bearer != s.token && !issued {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.Next()
}

// --- Auth ---

func (s *Server) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[in.Email]
	s.mu.Unlock()
	if !ok || acc.password != in.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": acc.token, "user": acc.user})
}

func (s *Server) profile(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[s.tokens[token]]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, acc.user)
}

// --- Generic collections ---

func (s *Server) list(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := s.collections[name]
		if out == nil {
			out = []map[string]any{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) get(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.indexOf(name, c.Param("id")); i >= 0 {
			c.JSON(http.StatusOK, s.collections[name][i])
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	}
}

func (s *Server) create(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if n, ok := body["name"].(string); ok {
			for _, existing := range s.collections[name] {
				if existing["name"] == n {
					c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("%s already exists", n)})
					return
				}
			}
		}
		body["_id"] = primitive.NewObjectID().Hex()
		if _, ok := body["status"]; !ok && name != "address" {
			body["status"] = string(models.StatusActive)
		}
		s.collections[name] = append(s.collections[name], body)
		c.JSON(http.StatusCreated, body)
	}
}

func (s *Server) update(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexOf(name, c.Param("id"))
		if i < 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		rec := s.collections[name][i]
		for k, v := range body {
			if k != "_id" {
				rec[k] = v
			}
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) remove(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexOf(name, c.Param("id"))
		if i < 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		s.collections[name] = append(s.collections[name][:i], s.collections[name][i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
	}
}

func (s *Server) toggle(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexOf(name, c.Param("id"))
		if i < 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		rec := s.collections[name][i]
		current, _ := rec["status"].(string)
		rec["status"] = string(models.Status(current).Toggled())
		c.JSON(http.StatusOK, rec)
	}
}

// --- Orders ---

func (s *Server) createOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOrder = &req

	if s.orderStatus != 0 {
		if s.orderMsg == "" {
			c.Status(s.orderStatus)
			return
		}
		c.JSON(s.orderStatus, gin.H{"message": s.orderMsg})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No items in order"})
		return
	}

	products := make(map[primitive.ObjectID]models.Product)
	for _, m := range s.collections["products"] {
		var p models.Product
		raw, _ := json.Marshal(m)
		if err := json.Unmarshal(raw, &p); err == nil {
			products[p.ID] = p
		}
	}

	total := decimal.Zero
	lines := make([]models.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Product not found"})
			return
		}
		size := findSize(p, it.Variant)
		if size == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid variant"})
			return
		}
		if size.Quantity < it.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Only %d left for %s", size.Quantity, p.Name)})
			return
		}
		total = total.Add(size.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		lines = append(lines, models.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			Price:     size.Price,
			Variant:   it.Variant,
		})
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		Items:           lines,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	s.collections["orders"] = append(s.collections["orders"], toMap(order))
	c.JSON(http.StatusCreated, models.OrderResult{OrderID: order.ID.Hex(), TotalAmount: total})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var in struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || !in.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf("orders", c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}
	rec := s.collections["orders"][i]
	rec["status"] = string(in.Status)
	c.JSON(http.StatusOK, rec)
}

// --- Helpers ---

func (s *Server) indexOf(collection, id string) int {
	for i, m := range s.collections[collection] {
		if m["_id"] == id {
			return i
		}
	}
	return -1
}

func findSize(p models.Product, ref models.VariantRef) *models.SizeEntry {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ColorID() != ref.ColorID {
			continue
		}
		for j := range v.Sizes {
			if v.Sizes[j].SizeID() == ref.SizeID {
				return &v.Sizes[j]
			}
		}
	}
	return nil
}

func toMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

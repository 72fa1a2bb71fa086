package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockroomhq/stockroom/internal/core/domain"
	"github.com/stockroomhq/stockroom/internal/core/service"
	"github.com/stockroomhq/stockroom/internal/port"
)

type HTTPHandler struct {
	auth     *service.AuthService
	products *service.ProductService
	ledger   *service.LedgerService
	users    port.UserRepository
	feed     port.ChangeFeed
}

func NewHTTPHandler(auth *service.AuthService, products *service.ProductService, ledger *service.LedgerService, users port.UserRepository, feed port.ChangeFeed) *HTTPHandler {
	return &HTTPHandler{
		auth:     auth,
		products: products,
		ledger:   ledger,
		users:    users,
		feed:     feed,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered successfully",
		"user":    u,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, u, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  u,
	})
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Status      string `json:"status" binding:"required"`
	Quantity    int    `json:"quantity"`
}

func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.products.Create(c.Request.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      domain.ProductStatus(req.Status),
		Quantity:    req.Quantity,
		CreatedBy:   c.GetString(ContextUserID),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.products.Update(c.Request.Context(), c.Param("id"), service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      domain.ProductStatus(req.Status),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func (h *HTTPHandler) GetAvailability(c *gin.Context) {
	available, err := h.ledger.CurrentAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"productId": c.Param("id"),
		"available": available,
	})
}

type DistributeRequest struct {
	RequestID     string `json:"requestId"`
	ProductID     string `json:"productId" binding:"required"`
	DistributedTo string `json:"distributedTo" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	Description   string `json:"description"`
}

func (h *HTTPHandler) CreateDistribution(c *gin.Context) {
	var req DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.ledger.Distribute(c.Request.Context(), service.DistributeInput{
		RequestID:     req.RequestID,
		ProductID:     req.ProductID,
		DistributedTo: req.DistributedTo,
		Quantity:      req.Quantity,
		Description:   req.Description,
		CreatedBy:     c.GetString(ContextUserID),
		CreatedByName: c.GetString(ContextUserName),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *HTTPHandler) ListDistributions(c *gin.Context) {
	records, err := h.ledger.ListAllDistributions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HTTPHandler) ListProductDistributions(c *gin.Context) {
	records, err := h.ledger.ListDistributions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	userCount, err := h.users.CountUsers(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	products, err := h.products.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	records, err := h.ledger.ListAllDistributions(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	totalStock := 0
	for _, p := range products {
		totalStock += p.Quantity
	}

	c.JSON(http.StatusOK, gin.H{
		"users":         userCount,
		"products":      len(products),
		"distributions": len(records),
		"totalStock":    totalStock,
	})
}

// StreamProducts bridges the change feed onto an SSE stream so dashboards
// can reflect state without polling.
func (h *HTTPHandler) StreamProducts(c *gin.Context) {
	ch, stop, err := h.feed.Subscribe(c.Request.Context(), domain.TopicProducts)
	if err != nil {
		writeError(c, err)
		return
	}
	defer stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Insufficient
// stock carries the available amount so the client can re-prompt with it.
func writeError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient stock",
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateRecord), errors.Is(err, domain.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

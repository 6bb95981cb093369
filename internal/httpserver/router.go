package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"icecream-storefront/internal/domain"
	authsvc "icecream-storefront/internal/service/auth"
	ordersvc "icecream-storefront/internal/service/order"
)

// AuthService is the slice of the auth service the handlers need.
type AuthService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Identify(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User, in authsvc.ProfileUpdate) (*domain.User, error)
}

// OrderService is the slice of the order service the handlers need.
type OrderService interface {
	Place(ctx context.Context, actor *domain.User, in ordersvc.PlaceInput) (*domain.Order, error)
	List(ctx context.Context, actor *domain.User, in ordersvc.ListInput) ([]domain.Order, error)
	MyOrders(ctx context.Context, actor *domain.User) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, actor *domain.User, orderID int64, status domain.OrderStatus) (*domain.Order, error)
}

// BusinessLister lists registered businesses for admins.
type BusinessLister interface {
	List(ctx context.Context) ([]domain.Business, error)
}

// AuditLister returns the admin audit trail.
type AuditLister interface {
	List(ctx context.Context) ([]domain.AdminLog, error)
}

// Deps carries everything the router needs.
type Deps struct {
	AuthSvc      AuthService
	OrderSvc     OrderService
	BusinessRepo BusinessLister
	AuditRepo    AuditLister
	CORSOrigins  []string
}

const currentUserKey = "currentUser"

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.AuthSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: auth and order services are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = deps.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Content-Type", "X-User-Id"}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.Use(identityMiddleware(deps.AuthSvc))

	api.GET("/catalog", catalogHandler)

	api.POST("/auth/register", registerHandler(deps.AuthSvc))
	api.POST("/auth/login", loginHandler(deps.AuthSvc))
	api.GET("/auth/me", meHandler())
	api.PATCH("/auth/me/update", updateProfileHandler(deps.AuthSvc))

	api.GET("/orders", listOrdersHandler(deps.OrderSvc))
	api.POST("/orders/place", placeOrderHandler(deps.OrderSvc))
	api.GET("/orders/my-orders", myOrdersHandler(deps.OrderSvc))
	api.PATCH("/orders/:id/status", updateStatusHandler(deps.OrderSvc))

	api.GET("/businesses", listBusinessesHandler(deps.BusinessRepo))
	api.GET("/admin/logs", adminLogsHandler(deps.AuditRepo))

	return router, nil
}

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// identityMiddleware resolves the X-User-Id header to an account. Requests
// without a valid header proceed anonymously; handlers that need an
// identity reject them individually.
func identityMiddleware(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-Id")
		if header == "" {
			c.Next()
			return
		}
		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		user, err := auth.Identify(ctx, userID)
		if err != nil {
			c.Next()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// currentUser returns the resolved account, or nil for anonymous requests.
func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// requireUser aborts with 401 unless the request carries a valid identity.
func requireUser(c *gin.Context) *domain.User {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return user
}

// requireAdmin aborts with 403 unless the request is from an admin.
func requireAdmin(c *gin.Context) *domain.User {
	user := currentUser(c)
	if user == nil || !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return nil
	}
	return user
}

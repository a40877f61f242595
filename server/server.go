// Package server wires the HTTP surface: routing, middleware, and the
// mapping from domain errors to responses.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/auth"
	"github.com/example/sunrisecafe/pkg/cart"
	"github.com/example/sunrisecafe/pkg/catalog"
	"github.com/example/sunrisecafe/pkg/config"
	"github.com/example/sunrisecafe/pkg/order"
)

type Server struct {
	config  *config.Config
	logger  *zap.Logger
	router  *gin.Engine
	catalog *catalog.Service
	carts   *cart.Aggregator
	orders  *order.Builder
	auth    *auth.Manager
}

func New(cfg *config.Config, logger *zap.Logger, cat *catalog.Service, carts *cart.Aggregator, orders *order.Builder, authMgr *auth.Manager) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:  cfg,
		logger:  logger,
		router:  router,
		catalog: cat,
		carts:   carts,
		orders:  orders,
		auth:    authMgr,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/auth/login", s.login)

		menu := v1.Group("/menu")
		{
			menu.GET("", s.listMenu)
			menu.GET("/:slug", s.getMenuItem)
		}

		carts := v1.Group("/cart")
		{
			carts.POST("", s.createCart)
			carts.GET("/:id", s.getCart)
			carts.POST("/:id/lines", s.addCartLine)
			carts.PATCH("/:id/lines/:lineId", s.updateCartLine)
			carts.DELETE("/:id/lines/:lineId", s.removeCartLine)
			carts.DELETE("/:id/lines", s.clearCart)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", s.checkout)
			orders.GET("/:number", s.getOrder)
		}

		admin := v1.Group("/admin", s.auth.Middleware())
		{
			admin.GET("/orders", s.listOrders)
			admin.PATCH("/orders/:number/status", s.updateOrderStatus)
			admin.POST("/menu", s.createMenuItem)
			admin.PUT("/menu/:slug", s.updateMenuItem)
			admin.DELETE("/menu/:slug", s.deleteMenuItem)
			admin.PATCH("/menu/:slug/availability", s.setMenuItemAvailability)
			admin.PUT("/variant-groups/:groupId", s.saveVariantGroup)
			admin.DELETE("/variant-groups/:groupId", s.deleteVariantGroup)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("HTTP server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/apperr"
	"github.com/example/sunrisecafe/pkg/cart"
	"github.com/example/sunrisecafe/pkg/models"
	"github.com/example/sunrisecafe/pkg/order"
)

// respondError maps domain errors to HTTP statuses. Unexpected failures log
// the real cause and surface as a generic 500 so internals never leak.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsUnavailable(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BindJSON(&req); err != nil {
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) listMenu(c *gin.Context) {
	featured := c.Query("featured") == "true"
	items, err := s.catalog.ListMenu(c.Request.Context(), c.Query("category"), featured)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (s *Server) getMenuItem(c *gin.Context) {
	detail, err := s.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) createCart(c *gin.Context) {
	var req struct {
		CartID string `json:"cartId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.carts.GetOrCreate(c.Request.Context(), req.CartID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.carts.PriceView(c.Request.Context(), created)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) getCart(c *gin.Context) {
	view, err := s.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) addCartLine(c *gin.Context) {
	var req cart.AddLineInput
	if err := c.BindJSON(&req); err != nil {
		return
	}

	view, err := s.carts.AddLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) updateCartLine(c *gin.Context) {
	var req struct {
		Qty int `json:"qty"`
	}
	if err := c.BindJSON(&req); err != nil {
		return
	}

	view, err := s.carts.UpdateLine(c.Request.Context(), c.Param("id"), c.Param("lineId"), req.Qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) removeCartLine(c *gin.Context) {
	view, err := s.carts.RemoveLine(c.Request.Context(), c.Param("id"), c.Param("lineId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) clearCart(c *gin.Context) {
	view, err := s.carts.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) checkout(c *gin.Context) {
	var req order.CreateInput
	if err := c.BindJSON(&req); err != nil {
		return
	}

	result, err := s.orders.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) getOrder(c *gin.Context) {
	found, err := s.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) listOrders(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	orders, err := s.orders.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BindJSON(&req); err != nil {
		return
	}

	updated, err := s.orders.UpdateStatus(c.Request.Context(), c.Param("number"), req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) createMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.BindJSON(&item); err != nil {
		return
	}

	if err := s.catalog.CreateItem(c.Request.Context(), &item); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.BindJSON(&item); err != nil {
		return
	}

	slug := c.Param("slug")
	item.Slug = slug
	if err := s.catalog.UpdateItem(c.Request.Context(), slug, &item); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	if err := s.catalog.DeleteItem(c.Request.Context(), c.Param("slug")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) setMenuItemAvailability(c *gin.Context) {
	var req struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := c.BindJSON(&req); err != nil {
		return
	}

	if err := s.catalog.SetAvailability(c.Request.Context(), c.Param("slug"), req.IsAvailable); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) saveVariantGroup(c *gin.Context) {
	var group models.VariantGroup
	if err := c.BindJSON(&group); err != nil {
		return
	}

	group.GroupID = c.Param("groupId")
	if err := s.catalog.SaveVariantGroup(c.Request.Context(), &group); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) deleteVariantGroup(c *gin.Context) {
	if err := s.catalog.DeleteVariantGroup(c.Request.Context(), c.Param("groupId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

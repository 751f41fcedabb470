package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/http/response"
	"github.com/yungbote/sealant-catalog-backend/internal/services"
)

type ProductHandler struct {
	products services.ProductService
}

func NewProductHandler(products services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type productRequest struct {
	services.ProductInput
	UserName string `json:"user_name" binding:"required"`
}

// GET /api/products?limit=&offset=
func (h *ProductHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	page, err := h.products.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": page.Products, "total": page.Total})
}

// GET /api/products/:product_id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request: %w", err))
		return
	}
	p, err := h.products.Create(c.Request.Context(), req.ProductInput, req.UserName)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

// PUT /api/products/:product_id
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request: %w", err))
		return
	}
	p, err := h.products.Update(c.Request.Context(), c.Param("product_id"), req.ProductInput, req.UserName)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// DELETE /api/products/:product_id?user_name=
func (h *ProductHandler) Delete(c *gin.Context) {
	productID := c.Param("product_id")
	deleted, err := h.products.Delete(c.Request.Context(), productID, strings.TrimSpace(c.Query("user_name")))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, string(domainagg.CodeNotFound), fmt.Errorf("product %q not found", productID))
		return
	}
	response.RespondOK(c, nil)
}

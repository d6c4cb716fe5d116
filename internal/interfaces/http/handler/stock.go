package handler

import (
	saleapp "github.com/gestion/backend/internal/application/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler serves the read-only stock ledger endpoints
type StockHandler struct {
	BaseHandler
	stockQuery *saleapp.StockQueryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockQuery *saleapp.StockQueryService) *StockHandler {
	return &StockHandler{stockQuery: stockQuery}
}

// List handles GET /stock
func (h *StockHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}

	items, total, err := h.stockQuery.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// GetByProduct handles GET /stock/:productId
func (h *StockHandler) GetByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	item, err := h.stockQuery.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

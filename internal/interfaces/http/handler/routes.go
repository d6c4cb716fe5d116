package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the sale endpoints
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Create)
		sales.GET("", h.List)
		sales.GET("/:id", h.GetByID)
		sales.DELETE("/:id", h.Delete)

		sales.POST("/:id/items", h.AddItem)
		sales.PUT("/:id/items/:productId", h.SetQuantity)
		sales.DELETE("/:id/items/:productId", h.RemoveItem)

		sales.POST("/:id/returns", h.ProcessReturn)
		sales.POST("/:id/payments", h.RegisterPayment)

		sales.POST("/:id/completion", h.RequestCompletion)
		sales.POST("/:id/approve", h.Approve)
		sales.POST("/:id/reject", h.Reject)
	}
}

// RegisterRoutes registers the stock read endpoints
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("", h.List)
		stock.GET("/:productId", h.GetByProduct)
	}
}

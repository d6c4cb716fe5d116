package handler

import (
	"time"

	saleapp "github.com/gestion/backend/internal/application/sale"
	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client-chosen key that makes a return
// request safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// SaleHandler handles sale-related API endpoints
type SaleHandler struct {
	BaseHandler
	saleService      *saleapp.SaleService
	reconciler       *saleapp.ReconcilerService
	returnService    *saleapp.ReturnService
	lifecycleService *saleapp.LifecycleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(
	saleService *saleapp.SaleService,
	reconciler *saleapp.ReconcilerService,
	returnService *saleapp.ReturnService,
	lifecycleService *saleapp.LifecycleService,
) *SaleHandler {
	return &SaleHandler{
		saleService:      saleService,
		reconciler:       reconciler,
		returnService:    returnService,
		lifecycleService: lifecycleService,
	}
}

// CreateSaleRequest represents a request to create a new sale
type CreateSaleRequest struct {
	CustomerName string                  `json:"customer_name" binding:"required,min=1,max=200"`
	Items        []CreateSaleItemRequest `json:"items" binding:"omitempty,dive"`
}

// CreateSaleItemRequest is one line of the create sale request
type CreateSaleItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

// AddItemRequest represents a request to add a line item to a sale
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

// SetQuantityRequest sets the absolute quantity of a line item
type SetQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// ProcessReturnRequest represents a batch return request
type ProcessReturnRequest struct {
	Items      []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason     string              `json:"reason" binding:"required,min=1,max=500"`
	ReturnedAt *time.Time          `json:"returned_at"`
}

// ReturnItemRequest is one line of a return batch
type ReturnItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// RegisterPaymentRequest represents a confirmed payment against a sale
type RegisterPaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// ReviewRequest carries the reviewer notes for approve/reject decisions
type ReviewRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := saleapp.CreateSaleRequest{CustomerName: req.CustomerName}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid unit price format")
			return
		}
		appReq.Items = append(appReq.Items, saleapp.CreateSaleItemRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
	}

	doc, err := h.saleService.Create(c.Request.Context(), actor, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	doc, err := h.saleService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// List handles GET /sales. Non-elevated users only see their own sales.
func (h *SaleHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query struct {
		Page       int    `form:"page" binding:"omitempty,min=1"`
		PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
		Completion string `form:"completion" binding:"omitempty,oneof=NONE PENDING_APPROVAL APPROVED REJECTED"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	filter := saleapp.SaleListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Completion != "" {
		status := sale.CompletionStatus(query.Completion)
		filter.Completion = &status
	}
	if !actor.Role.IsElevated() {
		filter.OwnerID = &actor.UserID
	}

	docs, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, docs, total, page, pageSize)
}

// Delete handles DELETE /sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	if err := h.saleService.Delete(c.Request.Context(), actor, saleID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddItem handles POST /sales/:id/items
func (h *SaleHandler) AddItem(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		h.BadRequest(c, "Invalid unit price format")
		return
	}

	doc, err := h.reconciler.AddLineItem(c.Request.Context(), actor, saleID, productID, req.Quantity, unitPrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// SetQuantity handles PUT /sales/:id/items/:productId
func (h *SaleHandler) SetQuantity(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.reconciler.SetQuantity(c.Request.Context(), actor, saleID, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveItem handles DELETE /sales/:id/items/:productId
func (h *SaleHandler) RemoveItem(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	doc, err := h.reconciler.RemoveLineItem(c.Request.Context(), actor, saleID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ProcessReturn handles POST /sales/:id/returns. The Idempotency-Key header
// makes retries of the same batch safe.
func (h *SaleHandler) ProcessReturn(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	var req ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := saleapp.ProcessReturnRequest{
		Reason:         req.Reason,
		ReturnedAt:     time.Now(),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	if req.ReturnedAt != nil {
		appReq.ReturnedAt = *req.ReturnedAt
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		appReq.Items = append(appReq.Items, saleapp.ProcessReturnItemRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	doc, err := h.returnService.ProcessReturn(c.Request.Context(), actor, saleID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RegisterPayment handles POST /sales/:id/payments
func (h *SaleHandler) RegisterPayment(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	doc, err := h.saleService.RegisterPayment(c.Request.Context(), actor, saleID, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// RequestCompletion handles POST /sales/:id/completion
func (h *SaleHandler) RequestCompletion(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	doc, err := h.lifecycleService.RequestCompletion(c.Request.Context(), actor, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Approve handles POST /sales/:id/approve
func (h *SaleHandler) Approve(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.lifecycleService.Approve(c.Request.Context(), actor, saleID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reject handles POST /sales/:id/reject
func (h *SaleHandler) Reject(c *gin.Context) {
	actor, saleID, ok := h.actorAndSaleID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.lifecycleService.Reject(c.Request.Context(), actor, saleID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// actorAndSaleID resolves the authenticated actor and the :id path parameter
func (h *SaleHandler) actorAndSaleID(c *gin.Context) (identity.Actor, uuid.UUID, bool) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return identity.Actor{}, uuid.Nil, false
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return identity.Actor{}, uuid.Nil, false
	}

	return actor, saleID, true
}

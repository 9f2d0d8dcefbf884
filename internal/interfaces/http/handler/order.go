package handler

import (
	"net/http"

	"github.com/MyDadsSoft/recoverys/internal/application/intake"
	"github.com/MyDadsSoft/recoverys/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order submission and listing endpoints
type OrderHandler struct {
	BaseHandler
	intake *intake.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(intakeService *intake.Service) *OrderHandler {
	return &OrderHandler{
		intake: intakeService,
	}
}

// SubmitOrderRequest represents the order form submission body
type SubmitOrderRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	DiscordRef      string `json:"discordRef"`
	PackageSelected string `json:"packageSelected"`
	Currency        string `json:"currency"`
}

// Submit handles POST /orders. The body keeps the flat shape the legacy
// order form expects; validation failures answer 400 with the missing-fields
// kind and never expose transport details.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Missing required fields")
		return
	}

	result, err := h.intake.Submit(c.Request.Context(), intake.SubmitRequest{
		Name:            req.Name,
		Email:           req.Email,
		DiscordRef:      req.DiscordRef,
		PackageSelected: req.PackageSelected,
		Currency:        req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderSubmitResponse{
		Success:  true,
		Message:  result.Message,
		Price:    result.Price,
		Currency: string(result.Currency),
	})
}

// List handles GET /orders, returning the full ledger as a JSON array in
// creation order.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.intake.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

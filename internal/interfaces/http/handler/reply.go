package handler

import (
	"net/http"

	"github.com/MyDadsSoft/recoverys/internal/application/reply"
	"github.com/MyDadsSoft/recoverys/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReplyHandler handles the programmatic reply endpoint
type ReplyHandler struct {
	BaseHandler
	coordinator *reply.Coordinator
}

// NewReplyHandler creates a new ReplyHandler
func NewReplyHandler(coordinator *reply.Coordinator) *ReplyHandler {
	return &ReplyHandler{
		coordinator: coordinator,
	}
}

// SendReplyRequest represents the reply submission body
type SendReplyRequest struct {
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}

// Send handles POST /replies. Failure kinds map to 404 (unknown order or
// unresolvable recipient), 503 (gateway not ready, retry later), and 500
// (send rejected). The order is only marked replied on delivered sends.
func (h *ReplyHandler) Send(c *gin.Context) {
	var req SendReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "orderId and message are required")
		return
	}
	if req.OrderID == 0 || req.Message == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "orderId and message are required")
		return
	}

	if err := h.coordinator.Reply(c.Request.Context(), req.OrderID, req.Message); err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReplyResponse{
		Success: true,
		Message: "Reply delivered",
	})
}

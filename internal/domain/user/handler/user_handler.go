package handler

import (
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/service"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/middleware"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetCapabilities 当前用户的匿名等级和发帖能力
// @Summary 获取发帖能力
// @Tags User
// @Produce json
// @Success 200 {object} service.CapabilityView
// @Router /api/user/capabilities [get]
func (h *UserHandler) GetCapabilities(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.FromError(c, apperror.Auth("Unauthorized"))
		return
	}

	view, err := h.service.GetCapabilities(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}

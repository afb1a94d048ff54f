package common

import (
	commonHandler "github.com/Christentimmy/CasaRanche-Backend/internal/pkg/common"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/middleware"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	setupRoutes(ctx.Router, commonHandler.NewUploadHandler(ctx.Uploader), ctx.Config.JWT.Secret)
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.UploadHandler, secret string) {
	// 文件上传接口
	r.POST("/upload", middleware.AuthMiddleware(secret), h.UploadFile)
}

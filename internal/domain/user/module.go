package user

import (
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/handler"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/service"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/middleware"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/registry"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/cache"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 帖子模块依赖用户能力，先初始化
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	userRepo := NewRepository(ctx)
	userService := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userService)

	setupRoutes(ctx.Router, userHandler, ctx.Config.JWT.Secret)
	return nil
}

// NewRepository 带缓存的用户仓库，帖子模块共用同一份配置
func NewRepository(ctx *registry.ModuleContext) repository.UserRepository {
	repo := repository.NewUserRepository(ctx.DB)
	if ctx.Redis == nil {
		return repo
	}
	return repository.NewCachedUserRepository(repo, cache.NewRedisCache(ctx.Redis, "casaranche:"), ctx.Config.App.UserCacheTTL, ctx.Logger)
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler, secret string) {
	userGroup := r.Group("/api/user")
	userGroup.Use(middleware.AuthMiddleware(secret))
	{
		userGroup.GET("/capabilities", h.GetCapabilities)
	}
}

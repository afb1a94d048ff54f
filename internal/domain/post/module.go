package post

import (
	groupRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/group/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/handler"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/service"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user"
	userRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/middleware"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/moderation"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/registry"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/sanitize"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/database"

	"github.com/gin-gonic/gin"
)

// PostModule 发帖模块
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 10
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	users := user.NewRepository(ctx)
	// 封禁和等级校验读库，不走缓存
	freshUsers := userRepo.NewUserRepository(ctx.DB)
	groups := groupRepo.NewGroupRepository(ctx.DB)
	posts := repository.NewPostRepository(ctx.DB)

	var queue service.EngagementQueue
	if ctx.Redis != nil {
		queue = service.NewRedisEngagementQueue(ctx.Redis)
	}

	dispatcher := service.NewDispatcher(service.DispatcherDeps{
		Posts:     posts,
		Users:     users,
		Pool:      ctx.Workers,
		Push:      ctx.Push,
		Queue:     queue,
		AIEnabled: ctx.Config.App.AIEngagementEnabled,
		Logger:    ctx.Logger.Named("post.dispatcher"),
	})

	postService := service.NewPostService(service.Deps{
		Validator:      service.NewValidator(freshUsers, groups, posts),
		Processor:      service.NewContentProcessor(users, sanitize.New(), moderation.NewKeywordModerator(ctx.Config.Moderation, ctx.Logger)),
		Dispatcher:     dispatcher,
		Posts:          posts,
		Users:          users,
		Groups:         groups,
		Transactor:     database.NewTransactor(ctx.DB),
		RequestTimeout: ctx.Config.App.RequestTimeout,
		Logger:         ctx.Logger.Named("post"),
	})
	postHandler := handler.NewPostHandler(postService, ctx.Uploader)

	// 2. 路由注册
	setupRoutes(ctx.Router, postHandler, ctx.Config.JWT.Secret)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler, secret string) {
	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware(secret))
	{
		postGroup.POST("", h.CreatePost)
		postGroup.GET("/hashtag/:tag", h.ListByHashtag)
		postGroup.GET("/:id", h.GetPost)
		postGroup.POST("/:id/reactions", h.React)
		postGroup.DELETE("/:id/reactions/:type", h.Unreact)
	}
}

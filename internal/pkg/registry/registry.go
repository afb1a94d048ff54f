package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/config"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/push"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine

	// 共享组件，由 cmd/server 创建
	Workers  *worker.WorkerPool
	Uploader uploader.Uploader // 未配置 OSS 时为 nil
	Push     push.PushService
}

// Module 模块接口
type Module interface {
	Name() string

	// Init 依赖注入和路由注册
	Init(ctx *ModuleContext) error

	// Priority 数字越小越先初始化
	Priority() int
}

var (
	mu             sync.Mutex
	moduleRegistry = make(map[string]Module)
)

// Register 注册模块，同名模块后注册的覆盖先注册的
func Register(module Module) {
	mu.Lock()
	defer mu.Unlock()
	moduleRegistry[module.Name()] = module
}

// GetModules 按优先级返回已注册的模块，优先级相同时按名称排序
func GetModules() []Module {
	mu.Lock()
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}
	mu.Unlock()

	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range GetModules() {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		if ctx.Logger != nil {
			ctx.Logger.Info("module initialized", zap.String("module", module.Name()), zap.Int("priority", module.Priority()))
		}
	}
	return nil
}

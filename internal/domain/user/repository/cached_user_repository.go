package repository

import (
	"context"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/cache"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/metrics"

	"go.uber.org/zap"
)

// UserCacheKeyPrefix 用户投影缓存键前缀
const UserCacheKeyPrefix = "user:"

// CacheInvalidator 由带缓存的仓库实现
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id string)
}

// CachedUserRepository 带缓存的用户仓库，GetByID 走 cache-aside
type CachedUserRepository struct {
	UserRepository
	cache cache.CacheService
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedUserRepository 创建带缓存的用户仓库
func NewCachedUserRepository(repo UserRepository, c cache.CacheService, ttl time.Duration, log *zap.Logger) UserRepository {
	return &CachedUserRepository{
		UserRepository: repo,
		cache:          c,
		ttl:            ttl,
		log:            log,
	}
}

func (r *CachedUserRepository) key(id string) string {
	return UserCacheKeyPrefix + id
}

// GetByID 获取单个用户（带缓存）
func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.cache.Get(ctx, r.key(id), &user); err == nil {
		metrics.GetGlobalCollector().RecordCacheOperation(UserCacheKeyPrefix, true)
		return &user, nil
	}
	metrics.GetGlobalCollector().RecordCacheOperation(UserCacheKeyPrefix, false)

	found, err := r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 缓存失败不影响业务逻辑，只记录日志
	if err := r.cache.Set(ctx, r.key(id), found, r.ttl); err != nil {
		r.log.Warn("failed to cache user", zap.String("user_id", id), zap.Error(err))
	}
	return found, nil
}

// Invalidate 删除用户投影缓存，须在写事务提交之后调用
func (r *CachedUserRepository) Invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, r.key(id)); err != nil {
		r.log.Warn("failed to invalidate user cache", zap.String("user_id", id), zap.Error(err))
	}
}

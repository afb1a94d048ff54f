package repository

import (
	"context"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/database"

	"gorm.io/gorm"
)

// UserRepository 接口定义
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindIDsByUsernames(ctx context.Context, usernames []string) (map[string]string, error)
	IncrementPostStats(ctx context.Context, id string, ghost, confession bool) error
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindIDsByUsernames 用户名 -> 用户ID，不存在的用户名不出现在结果中
func (r *userRepository) FindIDsByUsernames(ctx context.Context, usernames []string) (map[string]string, error) {
	result := make(map[string]string, len(usernames))
	if len(usernames) == 0 {
		return result, nil
	}

	var rows []struct {
		ID       string
		Username string
	}
	err := database.Conn(ctx, r.db).Model(&model.User{}).
		Select("id", "username").
		Where("username IN ?", usernames).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.Username] = row.ID
	}
	return result, nil
}

// IncrementPostStats 原子递增发帖统计
func (r *userRepository) IncrementPostStats(ctx context.Context, id string, ghost, confession bool) error {
	updates := map[string]interface{}{
		"stats_post_count": gorm.Expr("stats_post_count + ?", 1),
	}
	if ghost {
		updates["stats_ghost_post_count"] = gorm.Expr("stats_ghost_post_count + ?", 1)
		updates["ghost_posts_made"] = gorm.Expr("ghost_posts_made + ?", 1)
	}
	if confession {
		updates["stats_confession_count"] = gorm.Expr("stats_confession_count + ?", 1)
	}

	res := database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

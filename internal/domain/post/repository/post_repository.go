package repository

import (
	"context"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	RecordRepost(ctx context.Context, originalID, userID string) (bool, error)
	FindByHashtag(ctx context.Context, tag string, offset, limit int) ([]model.Post, int64, error)
	UpdateEngagement(ctx context.Context, id string, apply func(post *model.Post) bool) (*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return database.Conn(ctx, r.db).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// RecordRepost 转发计数加一并记录转发者；该用户已转发过时不做任何修改并返回 false
func (r *postRepository) RecordRepost(ctx context.Context, originalID, userID string) (bool, error) {
	res := database.Conn(ctx, r.db).Model(&model.Post{}).
		Where("id = ? AND NOT (? = ANY(COALESCE(engagement_reposter_ids, '{}')))", originalID, userID).
		Updates(map[string]interface{}{
			"engagement_reposts":      gorm.Expr("engagement_reposts + 1"),
			"engagement_reposter_ids": gorm.Expr("array_append(COALESCE(engagement_reposter_ids, '{}'), ?)", userID),
			"last_engagement_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindByHashtag 公开且审核通过的帖子，按发布时间倒序
func (r *postRepository) FindByHashtag(ctx context.Context, tag string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Post{}).
		Where("? = ANY(hashtags)", tag).
		Where("is_deleted = ?", false).
		Where("moderation_status = ?", model.ModerationApproved).
		Where("visibility_type = ?", model.VisibilityPublic)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// UpdateEngagement 锁定帖子行后执行 apply，apply 返回 true 时写回浏览和表情数据
func (r *postRepository) UpdateEngagement(ctx context.Context, id string, apply func(post *model.Post) bool) (*model.Post, error) {
	var post model.Post
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		if !apply(&post) {
			return nil
		}
		return tx.Model(&model.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
			"engagement_views":           post.Engagement.Views,
			"engagement_viewer_ids":      post.Engagement.ViewerIDs,
			"engagement_reactions":       post.Engagement.Reactions,
			"engagement_total_reactions": post.Engagement.TotalReactions,
			"last_engagement_at":         post.LastEngagementAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

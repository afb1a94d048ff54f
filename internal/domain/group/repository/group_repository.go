package repository

import (
	"context"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/group/model"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/database"

	"gorm.io/gorm"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*model.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// GetByID 查询群组及其成员
func (r *groupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	if err := database.Conn(ctx, r.db).Preload("Members").Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

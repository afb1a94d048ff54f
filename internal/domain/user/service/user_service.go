package service

import (
	"context"
	"errors"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"

	"gorm.io/gorm"
)

// CapabilityView 客户端用来决定可选择的媒体类型
type CapabilityView struct {
	Level        model.GhostLevel   `json:"level"`
	PostsMade    int64              `json:"postsMade"`
	Capabilities model.Capabilities `json:"capabilities"`
}

type UserService interface {
	GetCapabilities(ctx context.Context, userID string) (*CapabilityView, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetCapabilities(ctx context.Context, userID string) (*CapabilityView, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Infrastructure("load user", err)
	}

	level := user.GhostProgression.Level
	if level == "" {
		level = model.LevelA
	}
	return &CapabilityView{
		Level:        level,
		PostsMade:    user.GhostProgression.PostsMade,
		Capabilities: user.Capabilities(),
	}, nil
}

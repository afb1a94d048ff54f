package service

import (
	"context"
	"errors"

	groupRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/group/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	postRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/repository"
	userModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	userRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"

	"gorm.io/gorm"
)

// ValidatedRequest 校验通过后得到的上下文
type ValidatedRequest struct {
	User     *userModel.User
	Original *model.Post // 仅转发时非空
}

// Validator 发帖前置校验，按顺序执行，遇错即停，不产生副作用
type Validator struct {
	users  userRepo.UserRepository
	groups groupRepo.GroupRepository
	posts  postRepo.PostRepository
}

func NewValidator(users userRepo.UserRepository, groups groupRepo.GroupRepository, posts postRepo.PostRepository) *Validator {
	return &Validator{users: users, groups: groups, posts: posts}
}

// Validate 校验发帖请求
func (v *Validator) Validate(ctx context.Context, req *CreatePostRequest) (*ValidatedRequest, error) {
	if err := validateBasicRequirements(req); err != nil {
		return nil, err
	}

	user, err := v.loadUser(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}

	if req.EffectivePostType() == model.PostTypeGhost && len(req.Files) > 0 {
		if err := checkGhostMediaPermission(user.Capabilities(), req.Files); err != nil {
			return nil, err
		}
	}

	if req.EffectiveVisibility() == model.VisibilityGroup {
		if err := v.checkGroupPermission(ctx, req.GroupID, user.ID); err != nil {
			return nil, err
		}
	}

	// 没有 originalPostId 的转发按普通内容处理，不做链接
	var original *model.Post
	if req.EffectivePostType() == model.PostTypeRepost && req.OriginalPostID != "" {
		original, err = v.checkRepostEligibility(ctx, req.OriginalPostID)
		if err != nil {
			return nil, err
		}
	}

	return &ValidatedRequest{User: user, Original: original}, nil
}

func validateBasicRequirements(req *CreatePostRequest) error {
	if req.hasText() || len(req.Files) > 0 || req.Poll != nil || req.OriginalPostID != "" {
		return nil
	}
	return apperror.Validation("Post must contain text, media, poll, or be a repost")
}

func (v *Validator) loadUser(ctx context.Context, id string) (*userModel.User, error) {
	user, err := v.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Infrastructure("load user", err)
	}
	if user.AccountStatus.IsBanned {
		return nil, apperror.Validation("Account banned")
	}
	return user, nil
}

// checkGhostMediaPermission 返回第一个超出等级权限的文件对应的错误
func checkGhostMediaPermission(caps userModel.Capabilities, files []uploader.StoredFile) error {
	for _, f := range files {
		switch f.ResourceType {
		case uploader.ResourceVideo:
			if !caps.CanAddVideos {
				return apperror.Validation("Your ghost level does not allow video uploads")
			}
		case uploader.ResourceAudio:
			if !caps.CanAddMusic {
				return apperror.Validation("Your ghost level does not allow music uploads")
			}
		default:
			if !caps.CanAddPhotos {
				return apperror.Validation("Your ghost level does not allow photo uploads")
			}
		}
	}
	return nil
}

func (v *Validator) checkGroupPermission(ctx context.Context, groupID, userID string) error {
	if groupID == "" {
		return apperror.Validation("Group id is required for group posts")
	}

	group, err := v.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Group not found")
		}
		return apperror.Infrastructure("load group", err)
	}
	if !group.HasMember(userID) {
		return apperror.Validation("You are not a member of this group")
	}
	return nil
}

func (v *Validator) checkRepostEligibility(ctx context.Context, originalID string) (*model.Post, error) {
	original, err := v.posts.GetByID(ctx, originalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Original post not found")
		}
		return nil, apperror.Infrastructure("load original post", err)
	}
	if !original.IsAvailable() {
		return nil, apperror.NotFound("Original post not found")
	}
	if !original.Visibility.AllowReposting {
		return nil, apperror.Validation("This post cannot be reposted")
	}
	return original, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	groupModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/group/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	userModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"
	baseModel "github.com/Christentimmy/CasaRanche-Backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testUser(id string, level userModel.GhostLevel) *userModel.User {
	return &userModel.User{
		BaseModel:        baseModel.BaseModel{ID: id},
		Username:         "user_" + id,
		AnonymousID:      "anon-" + id,
		GhostProgression: userModel.GhostProgression{Level: level},
	}
}

func newTestValidator() (*Validator, *MockUserRepository, *MockGroupRepository, *MockPostRepository) {
	users := new(MockUserRepository)
	groups := new(MockGroupRepository)
	posts := new(MockPostRepository)
	return NewValidator(users, groups, posts), users, groups, posts
}

func TestValidate_BasicRequirements(t *testing.T) {
	v, users, _, _ := newTestValidator()

	_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "   "})

	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, "Post must contain text, media, poll, or be a repost", err.Error())
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestValidate_User(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		v, users, _, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(nil, gorm.ErrRecordNotFound)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi"})
		assert.True(t, apperror.IsNotFound(err))
		assert.Equal(t, "User not found", err.Error())
	})

	t.Run("banned user", func(t *testing.T) {
		v, users, _, _ := newTestValidator()
		u := testUser("u1", userModel.LevelD)
		u.AccountStatus.IsBanned = true
		users.On("GetByID", mock.Anything, "u1").Return(u, nil)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi"})
		assert.True(t, apperror.IsValidation(err))
		assert.Equal(t, "Account banned", err.Error())
	})

	t.Run("store failure", func(t *testing.T) {
		v, users, _, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(nil, errors.New("connection refused"))

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi"})
		require.Error(t, err)
		assert.False(t, apperror.IsValidation(err))
		assert.False(t, apperror.IsNotFound(err))
	})
}

func TestValidate_GhostMedia(t *testing.T) {
	photo := uploader.StoredFile{URL: "https://cdn/p.jpg", ResourceType: uploader.ResourceImage}
	video := uploader.StoredFile{URL: "https://cdn/v.mp4", ResourceType: uploader.ResourceVideo}
	audio := uploader.StoredFile{URL: "https://cdn/a.mp3", ResourceType: uploader.ResourceAudio}

	tests := []struct {
		name    string
		level   userModel.GhostLevel
		files   []uploader.StoredFile
		wantErr string
	}{
		{"level A photo", userModel.LevelA, []uploader.StoredFile{photo}, "Your ghost level does not allow photo uploads"},
		{"level B photo", userModel.LevelB, []uploader.StoredFile{photo}, ""},
		{"level B video", userModel.LevelB, []uploader.StoredFile{photo, video}, "Your ghost level does not allow video uploads"},
		{"level C audio", userModel.LevelC, []uploader.StoredFile{video, audio}, "Your ghost level does not allow music uploads"},
		{"level D everything", userModel.LevelD, []uploader.StoredFile{photo, video, audio}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, users, _, _ := newTestValidator()
			users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", tt.level), nil)

			_, err := v.Validate(context.Background(), &CreatePostRequest{
				AuthorID: "u1",
				PostType: model.PostTypeGhost,
				Files:    tt.files,
			})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}

	t.Run("regular post ignores ghost level", func(t *testing.T) {
		v, users, _, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Files: []uploader.StoredFile{video}})
		assert.NoError(t, err)
	})
}

func TestValidate_Group(t *testing.T) {
	group := &groupModel.Group{
		BaseModel: baseModel.BaseModel{ID: "g1"},
		Members:   []groupModel.GroupMember{{GroupID: "g1", UserID: "member"}},
	}

	t.Run("missing group id", func(t *testing.T) {
		v, users, _, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi", VisibilityType: model.VisibilityGroup})
		assert.Equal(t, "Group id is required for group posts", err.Error())
	})

	t.Run("group not found", func(t *testing.T) {
		v, users, groups, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)
		groups.On("GetByID", mock.Anything, "g404").Return(nil, gorm.ErrRecordNotFound)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi", VisibilityType: model.VisibilityGroup, GroupID: "g404"})
		assert.True(t, apperror.IsNotFound(err))
		assert.Equal(t, "Group not found", err.Error())
	})

	t.Run("not a member", func(t *testing.T) {
		v, users, groups, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)
		groups.On("GetByID", mock.Anything, "g1").Return(group, nil)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi", VisibilityType: model.VisibilityGroup, GroupID: "g1"})
		assert.True(t, apperror.IsValidation(err))
		assert.Equal(t, "You are not a member of this group", err.Error())
	})

	t.Run("member", func(t *testing.T) {
		v, users, groups, _ := newTestValidator()
		users.On("GetByID", mock.Anything, "member").Return(testUser("member", userModel.LevelA), nil)
		groups.On("GetByID", mock.Anything, "g1").Return(group, nil)

		res, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "member", Text: "hi", VisibilityType: model.VisibilityGroup, GroupID: "g1"})
		require.NoError(t, err)
		assert.Nil(t, res.Original)
	})
}

func TestValidate_Repost(t *testing.T) {
	original := &model.Post{
		BaseModel:  baseModel.BaseModel{ID: "p1"},
		Visibility: model.Visibility{AllowReposting: true},
	}

	t.Run("repost without original id skips linkage", func(t *testing.T) {
		v, users, _, posts := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)

		res, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", Text: "hi", PostType: model.PostTypeRepost})
		require.NoError(t, err)
		assert.Nil(t, res.Original)
		posts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("original not found", func(t *testing.T) {
		v, users, _, posts := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)
		posts.On("GetByID", mock.Anything, "p404").Return(nil, gorm.ErrRecordNotFound)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", PostType: model.PostTypeRepost, OriginalPostID: "p404"})
		assert.True(t, apperror.IsNotFound(err))
		assert.Equal(t, "Original post not found", err.Error())
	})

	t.Run("deleted original", func(t *testing.T) {
		v, users, _, posts := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)
		deleted := *original
		deleted.IsDeleted = true
		posts.On("GetByID", mock.Anything, "p1").Return(&deleted, nil)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", PostType: model.PostTypeRepost, OriginalPostID: "p1"})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("reposting disabled", func(t *testing.T) {
		v, users, _, posts := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)
		locked := *original
		locked.Visibility.AllowReposting = false
		posts.On("GetByID", mock.Anything, "p1").Return(&locked, nil)

		_, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", PostType: model.PostTypeRepost, OriginalPostID: "p1"})
		assert.Equal(t, "This post cannot be reposted", err.Error())
	})

	t.Run("eligible", func(t *testing.T) {
		v, users, _, posts := newTestValidator()
		users.On("GetByID", mock.Anything, "u1").Return(testUser("u1", userModel.LevelA), nil)
		posts.On("GetByID", mock.Anything, "p1").Return(original, nil)

		res, err := v.Validate(context.Background(), &CreatePostRequest{AuthorID: "u1", PostType: model.PostTypeRepost, OriginalPostID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, "p1", res.Original.ID)
	})
}

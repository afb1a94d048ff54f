package service

import (
	"testing"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	userModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/moderation"
	baseModel "github.com/Christentimmy/CasaRanche-Backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestBuildPost_Defaults(t *testing.T) {
	user := testUser("u1", userModel.LevelA)
	user.IsVerified = true

	post := BuildPost(user, &ProcessedContent{Text: "hello"}, &CreatePostRequest{AuthorID: "u1", Text: "hello"}, buildTime)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "u1", post.AuthorID)
	assert.Equal(t, model.PostTypeRegular, post.PostType)
	assert.Equal(t, model.AlignLeft, post.Content.Formatting.Alignment)
	assert.False(t, post.GhostMode.IsGhostPost)
	assert.Equal(t, "anon-u1", post.GhostMode.AnonymousID)
	assert.True(t, post.GhostMode.ShowVerificationBadge)
	assert.Equal(t, []string{model.VerificationAccount}, []string(post.GhostMode.AllowedVerificationTypes))

	assert.Equal(t, model.VisibilityPublic, post.Visibility.Type)
	assert.True(t, post.Visibility.AllowComments)
	assert.True(t, post.Visibility.ShowPostTime)
	assert.True(t, post.Visibility.AllowSharing)
	assert.True(t, post.Visibility.AllowReposting)
	assert.False(t, post.Visibility.HideFromTimeline)
	assert.Nil(t, post.Visibility.GroupID)
	assert.NotNil(t, post.Visibility.RestrictedAgeGroups)
	assert.Empty(t, post.Visibility.RestrictedAgeGroups)

	assert.Nil(t, post.OriginalPostID)
	assert.Zero(t, post.RepostDepth)
	assert.NotNil(t, post.RepostChain)
	assert.Len(t, post.RepostChain, post.RepostDepth)

	assert.Nil(t, post.Expiration.ExpiresAt)
	assert.Nil(t, post.Location.Data())
	assert.Nil(t, post.Poll.Data())

	assert.Equal(t, model.ModerationApproved, post.ModerationStatus)
	assert.Zero(t, post.Engagement.Views)
	assert.Empty(t, post.Engagement.ViewerIDs)
	assert.Zero(t, post.Engagement.Reposts)
	assert.Empty(t, post.Engagement.ReposterIDs)
	assert.False(t, post.AIInteraction.Data().HasAIEngagement)

	assert.False(t, post.IsDraft)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, buildTime, *post.PublishedAt)
	assert.Equal(t, buildTime, post.LastEngagementAt)
}

func TestBuildPost_VerificationBadgeNeedsVerifiedUser(t *testing.T) {
	user := testUser("u1", userModel.LevelA)

	post := BuildPost(user, &ProcessedContent{}, &CreatePostRequest{ShowVerificationBadge: ptr(true)}, buildTime)
	assert.False(t, post.GhostMode.ShowVerificationBadge)

	user.IsVerified = true
	post = BuildPost(user, &ProcessedContent{}, &CreatePostRequest{ShowVerificationBadge: ptr(false)}, buildTime)
	assert.False(t, post.GhostMode.ShowVerificationBadge)
}

func TestBuildPost_TypeSpecificFields(t *testing.T) {
	user := testUser("u1", userModel.LevelA)

	t.Run("ghost type forces ghost flag", func(t *testing.T) {
		post := BuildPost(user, &ProcessedContent{}, &CreatePostRequest{PostType: model.PostTypeGhost}, buildTime)
		assert.True(t, post.GhostMode.IsGhostPost)
	})

	t.Run("confession fields only for confessions", func(t *testing.T) {
		req := &CreatePostRequest{ConfessionDisplayName: "Secret", ConfessionAvatarURL: "https://cdn/a.png"}

		post := BuildPost(user, &ProcessedContent{}, req, buildTime)
		assert.Empty(t, post.ConfessionDisplayName)

		req.PostType = model.PostTypeConfession
		post = BuildPost(user, &ProcessedContent{}, req, buildTime)
		assert.Equal(t, "Secret", post.ConfessionDisplayName)
		assert.Equal(t, "https://cdn/a.png", post.ConfessionAvatarURL)
	})

	t.Run("repost fields only for reposts", func(t *testing.T) {
		req := &CreatePostRequest{OriginalPostID: "p1", RepostComment: "look"}

		post := BuildPost(user, &ProcessedContent{}, req, buildTime)
		assert.Nil(t, post.OriginalPostID)
		assert.Empty(t, post.RepostComment)

		req.PostType = model.PostTypeRepost
		post = BuildPost(user, &ProcessedContent{}, req, buildTime)
		require.NotNil(t, post.OriginalPostID)
		assert.Equal(t, "p1", *post.OriginalPostID)
		assert.Equal(t, "look", post.RepostComment)
		assert.Zero(t, post.RepostDepth)
	})

	t.Run("group id only for group visibility", func(t *testing.T) {
		req := &CreatePostRequest{GroupID: "g1"}

		post := BuildPost(user, &ProcessedContent{}, req, buildTime)
		assert.Nil(t, post.Visibility.GroupID)

		req.VisibilityType = model.VisibilityGroup
		post = BuildPost(user, &ProcessedContent{}, req, buildTime)
		require.NotNil(t, post.Visibility.GroupID)
		assert.Equal(t, "g1", *post.Visibility.GroupID)
	})
}

func TestBuildPost_Expiration(t *testing.T) {
	user := testUser("u1", userModel.LevelA)

	post := BuildPost(user, &ProcessedContent{}, &CreatePostRequest{IsEphemeral: true, AutoDeleteAfterHours: ptr(24)}, buildTime)
	require.NotNil(t, post.Expiration.ExpiresAt)
	assert.Equal(t, buildTime.Add(24*time.Hour), *post.Expiration.ExpiresAt)

	post = BuildPost(user, &ProcessedContent{}, &CreatePostRequest{AutoDeleteAfterHours: ptr(24)}, buildTime)
	assert.Nil(t, post.Expiration.ExpiresAt)

	post = BuildPost(user, &ProcessedContent{}, &CreatePostRequest{IsEphemeral: true, AutoDeleteAfterHours: ptr(0)}, buildTime)
	assert.Nil(t, post.Expiration.ExpiresAt)
}

func TestBuildPost_Moderation(t *testing.T) {
	user := testUser("u1", userModel.LevelA)
	content := &ProcessedContent{Verdict: moderation.Verdict{
		Flags:         moderation.Flags{NSFW: true, Hate: true},
		AutoHidden:    true,
		AgeRestricted: true,
		IsExplicit:    true,
	}}

	post := BuildPost(user, content, &CreatePostRequest{}, buildTime)

	assert.Equal(t, model.ModerationFlagged, post.ModerationStatus)
	assert.True(t, post.ContentModeration.FlaggedFor.NSFW)
	assert.True(t, post.ContentModeration.FlaggedFor.Hate)
	assert.False(t, post.ContentModeration.FlaggedFor.Violence)
	assert.False(t, post.ContentModeration.ReviewedByModerator)
	assert.True(t, post.IsExplicitContent)
	assert.True(t, post.AgeRestrictedContent)
	assert.Equal(t, []string{model.AgeGroupUnder18}, []string(post.Visibility.RestrictedAgeGroups))
}

func TestBuildPost_Location(t *testing.T) {
	user := testUser("u1", userModel.LevelA)

	post := BuildPost(user, &ProcessedContent{}, &CreatePostRequest{Location: &LocationInput{Name: "Lagos"}}, buildTime)
	require.NotNil(t, post.Location.Data())
	assert.True(t, post.Location.Data().IsVisible)

	post = BuildPost(user, &ProcessedContent{}, &CreatePostRequest{Location: &LocationInput{Name: "Lagos", IsVisible: ptr(false)}}, buildTime)
	assert.False(t, post.Location.Data().IsVisible)
}

func TestLinkRepostChain(t *testing.T) {
	root := &model.Post{BaseModel: baseModel.BaseModel{ID: "p0"}}
	first := &model.Post{}
	LinkRepostChain(first, root)

	assert.Equal(t, []string{"p0"}, []string(first.RepostChain))
	assert.Equal(t, 1, first.RepostDepth)
	require.NotNil(t, first.OriginalPostID)
	assert.Equal(t, "p0", *first.OriginalPostID)

	first.ID = "p1"
	second := &model.Post{}
	LinkRepostChain(second, first)

	assert.Equal(t, []string{"p0", "p1"}, []string(second.RepostChain))
	assert.Equal(t, len(second.RepostChain), second.RepostDepth)
	// 原帖的链不受影响
	assert.Equal(t, []string{"p0"}, []string(first.RepostChain))
}

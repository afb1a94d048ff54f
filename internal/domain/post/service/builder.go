package service

import (
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	userModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	baseModel "github.com/Christentimmy/CasaRanche-Backend/pkg/model"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// BuildPost 组装待保存的帖子，不访问任何外部依赖
func BuildPost(user *userModel.User, content *ProcessedContent, req *CreatePostRequest, now time.Time) *model.Post {
	postType := req.EffectivePostType()
	visibility := req.EffectiveVisibility()
	verdict := content.Verdict

	post := &model.Post{
		BaseModel: baseModel.BaseModel{ID: baseModel.NewID()},
		AuthorID:  user.ID,
		PostType:  postType,
		Content: model.Content{
			Text:       content.Text,
			Formatting: buildFormatting(req.Formatting),
		},
		Media: datatypes.NewJSONSlice(nonNilMedia(content.Media)),
		Poll:  datatypes.NewJSONType(content.Poll),
		GhostMode: model.GhostMode{
			IsGhostPost:              req.IsGhostPost || postType == model.PostTypeGhost,
			AnonymousID:              user.AnonymousID,
			ShowVerificationBadge:    boolOr(req.ShowVerificationBadge, true) && user.IsVerified,
			AllowedVerificationTypes: allowedVerificationTypes(req.AllowedVerificationTypes),
		},
		RepostChain: pq.StringArray{},
		Visibility: model.Visibility{
			Type:                visibility,
			AllowComments:       boolOr(req.AllowComments, true),
			ShowPostTime:        boolOr(req.ShowPostTime, true),
			AllowSharing:        boolOr(req.AllowSharing, true),
			AllowReposting:      boolOr(req.AllowReposting, true),
			HideFromTimeline:    req.HideFromTimeline,
			RestrictedAgeGroups: pq.StringArray{},
		},
		Expiration: model.Expiration{
			IsEphemeral:          req.IsEphemeral,
			AutoDeleteAfterHours: req.AutoDeleteAfterHours,
			ViewLimit:            req.ViewLimit,
		},
		Engagement: model.Engagement{
			ViewerIDs:   pq.StringArray{},
			Reactions:   datatypes.NewJSONSlice([]model.Reaction{}),
			SharerIDs:   pq.StringArray{},
			SaverIDs:    pq.StringArray{},
			ReposterIDs: pq.StringArray{},
		},
		Location:             datatypes.NewJSONType(buildLocation(req.Location)),
		Hashtags:             pq.StringArray(nonNilStrings(content.Hashtags)),
		MentionedUsers:       pq.StringArray(nonNilStrings(content.Mentions)),
		ModerationStatus:     model.ModerationApproved,
		IsExplicitContent:    verdict.IsExplicit,
		AgeRestrictedContent: verdict.AgeRestricted,
		ContentModeration: model.ContentModeration{
			FlaggedFor: model.ModerationFlags{
				NSFW:     verdict.Flags.NSFW,
				Violence: verdict.Flags.Violence,
				Hate:     verdict.Flags.Hate,
			},
			AutoHidden:    verdict.AutoHidden,
			AgeRestricted: verdict.AgeRestricted,
			ModeratedAt:   &now,
		},
		Trending: datatypes.NewJSONType(model.Trending{
			DemographicBreakdown: model.DemographicBreakdown{
				AgeGroups: map[string]int{},
				Locations: map[string]int{},
			},
		}),
		AIInteraction: datatypes.NewJSONType(model.AIInteraction{
			AIComments:  []model.AIComment{},
			AIReactions: []model.AIReaction{},
		}),
		PublishedAt:      &now,
		LastEngagementAt: now,
	}

	if verdict.AutoHidden {
		post.ModerationStatus = model.ModerationFlagged
	}

	if postType == model.PostTypeConfession {
		post.ConfessionDisplayName = req.ConfessionDisplayName
		post.ConfessionAvatarURL = req.ConfessionAvatarURL
	}

	if postType == model.PostTypeRepost && req.OriginalPostID != "" {
		originalID := req.OriginalPostID
		post.OriginalPostID = &originalID
		post.RepostComment = req.RepostComment
	}

	if verdict.AgeRestricted {
		post.Visibility.RestrictedAgeGroups = pq.StringArray{model.AgeGroupUnder18}
	}

	if visibility == model.VisibilityGroup && req.GroupID != "" {
		groupID := req.GroupID
		post.Visibility.GroupID = &groupID
	}

	if req.IsEphemeral && req.AutoDeleteAfterHours != nil && *req.AutoDeleteAfterHours > 0 {
		expiresAt := now.Add(time.Duration(*req.AutoDeleteAfterHours) * time.Hour)
		post.Expiration.ExpiresAt = &expiresAt
	}

	return post
}

func buildFormatting(in *FormattingInput) model.Formatting {
	if in == nil {
		return model.Formatting{Alignment: model.AlignLeft}
	}
	f := model.Formatting{Alignment: in.Alignment, IsBold: in.IsBold, Font: in.Font}
	if f.Alignment == "" {
		f.Alignment = model.AlignLeft
	}
	return f
}

func allowedVerificationTypes(in []string) pq.StringArray {
	if len(in) == 0 {
		return pq.StringArray{model.VerificationAccount}
	}
	return pq.StringArray(append([]string{}, in...))
}

func buildLocation(in *LocationInput) *model.Location {
	if in == nil {
		return nil
	}
	return &model.Location{
		Name:        in.Name,
		Coordinates: in.Coordinates,
		IsVisible:   boolOr(in.IsVisible, true),
	}
}

// 空数组写入 '{}'，nil 会被写成 NULL
func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilMedia(in []model.MediaItem) []model.MediaItem {
	if in == nil {
		return []model.MediaItem{}
	}
	return in
}

package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
)

// PollOptionInput 接受 {"text": "..."} 或直接的字符串
type PollOptionInput struct {
	Text string `json:"text"`
}

func (o *PollOptionInput) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		o.Text = text
		return nil
	}
	type plain PollOptionInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = PollOptionInput(p)
	return nil
}

type PollInput struct {
	Question             string            `json:"question"`
	Options              []PollOptionInput `json:"options"`
	AllowMultipleChoices bool              `json:"allowMultipleChoices"`
	ExpiresAt            *time.Time        `json:"expiresAt"`
}

type FormattingInput struct {
	Alignment model.Alignment `json:"alignment"`
	IsBold    bool            `json:"isBold"`
	Font      string          `json:"font"`
}

type LocationInput struct {
	Name        string             `json:"name"`
	Coordinates *model.Coordinates `json:"coordinates"`
	IsVisible   *bool              `json:"isVisible"`
}

// CreatePostRequest 发帖请求；指针字段为 nil 时使用默认值
type CreatePostRequest struct {
	AuthorID string `json:"-" form:"-"`

	Text       string           `json:"text" form:"text"`
	PostType   model.PostType   `json:"postType" form:"postType"`
	Formatting *FormattingInput `json:"formatting" form:"-"`

	IsGhostPost              bool     `json:"isGhostPost" form:"isGhostPost"`
	ShowVerificationBadge    *bool    `json:"showVerificationBadge" form:"showVerificationBadge"`
	AllowedVerificationTypes []string `json:"allowedVerificationTypes" form:"allowedVerificationTypes"`

	ConfessionDisplayName string `json:"confessionDisplayName" form:"confessionDisplayName"`
	ConfessionAvatarURL   string `json:"confessionAvatarUrl" form:"confessionAvatarUrl"`

	CustomHashtags   []string `json:"customHashtags" form:"customHashtags"`
	MentionedUserIDs []string `json:"mentionedUserIds" form:"mentionedUserIds"`

	Poll     *PollInput     `json:"poll" form:"-"`
	Location *LocationInput `json:"location" form:"-"`

	VisibilityType   model.VisibilityType `json:"visibilityType" form:"visibilityType"`
	AllowComments    *bool                `json:"allowComments" form:"allowComments"`
	ShowPostTime     *bool                `json:"showPostTime" form:"showPostTime"`
	AllowSharing     *bool                `json:"allowSharing" form:"allowSharing"`
	AllowReposting   *bool                `json:"allowReposting" form:"allowReposting"`
	HideFromTimeline bool                 `json:"hideFromTimeline" form:"hideFromTimeline"`
	GroupID          string               `json:"groupId" form:"groupId"`

	OriginalPostID string `json:"originalPostId" form:"originalPostId"`
	RepostComment  string `json:"repostComment" form:"repostComment"`

	IsEphemeral          bool `json:"isEphemeral" form:"isEphemeral"`
	AutoDeleteAfterHours *int `json:"autoDeleteAfterHours" form:"autoDeleteAfterHours"`
	ViewLimit            *int `json:"viewLimit" form:"viewLimit"`

	// Files 已上传到对象存储的文件
	Files []uploader.StoredFile `json:"files" form:"-"`
}

// EffectivePostType 未指定时为 regular
func (r *CreatePostRequest) EffectivePostType() model.PostType {
	if r.PostType == "" {
		return model.PostTypeRegular
	}
	return r.PostType
}

// EffectiveVisibility 未指定时为 public
func (r *CreatePostRequest) EffectiveVisibility() model.VisibilityType {
	if r.VisibilityType == "" {
		return model.VisibilityPublic
	}
	return r.VisibilityType
}

func (r *CreatePostRequest) hasText() bool {
	return strings.TrimSpace(r.Text) != ""
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

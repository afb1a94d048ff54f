package model

import (
	"time"

	baseModel "github.com/Christentimmy/CasaRanche-Backend/pkg/model"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type PostType string

const (
	PostTypeRegular    PostType = "regular"
	PostTypeGhost      PostType = "ghost"
	PostTypeConfession PostType = "confession"
	PostTypeRepost     PostType = "repost"
)

type VisibilityType string

const (
	VisibilityPublic     VisibilityType = "public"
	VisibilityFollowers  VisibilityType = "followers"
	VisibilityPrivate    VisibilityType = "private"
	VisibilityGhost      VisibilityType = "ghost"
	VisibilityConfession VisibilityType = "confession"
	VisibilityGroup      VisibilityType = "group"
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationFlagged  ModerationStatus = "flagged"
	ModerationRemoved  ModerationStatus = "removed"
)

// 可以展示的认证类型
const (
	VerificationAccount = "account"
	VerificationSchool  = "school"
	VerificationWork    = "work"
)

// AgeGroupUnder18 受限内容屏蔽的年龄段
const AgeGroupUnder18 = "under18"

// Formatting 正文排版
type Formatting struct {
	Alignment Alignment `gorm:"size:8;default:'left'" json:"alignment"`
	IsBold    bool      `json:"isBold"`
	Font      string    `json:"font,omitempty"`
}

// Content 正文
type Content struct {
	Text       string     `gorm:"type:text" json:"text"`
	Formatting Formatting `gorm:"embedded;embeddedPrefix:formatting_" json:"formatting"`
}

// GhostMode 匿名发帖设置
type GhostMode struct {
	IsGhostPost              bool           `gorm:"index" json:"isGhostPost"`
	AnonymousID              string         `gorm:"size:64" json:"anonymousId,omitempty"`
	ShowVerificationBadge    bool           `json:"showVerificationBadge"`
	AllowedVerificationTypes pq.StringArray `gorm:"type:text[]" json:"allowedVerificationTypes"`
}

// Visibility 可见性与互动权限
type Visibility struct {
	Type                VisibilityType `gorm:"size:16;index" json:"type"`
	AllowComments       bool           `json:"allowComments"`
	ShowPostTime        bool           `json:"showPostTime"`
	AllowSharing        bool           `json:"allowSharing"`
	AllowReposting      bool           `json:"allowReposting"`
	HideFromTimeline    bool           `json:"hideFromTimeline"`
	RestrictedAgeGroups pq.StringArray `gorm:"type:text[]" json:"restrictedAgeGroups"`
	GroupID             *string        `gorm:"type:uuid" json:"groupId,omitempty"`
}

// Expiration 阅后即焚设置
type Expiration struct {
	IsEphemeral          bool       `json:"isEphemeral"`
	ExpiresAt            *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	AutoDeleteAfterHours *int       `json:"autoDeleteAfterHours,omitempty"`
	ViewLimit            *int       `json:"viewLimit,omitempty"`
}

// ModerationFlags 命中的审核分类
type ModerationFlags struct {
	NSFW     bool `gorm:"column:nsfw" json:"nsfw"`
	Violence bool `json:"violence"`
	Hate     bool `json:"hate"`
}

// ContentModeration 审核记录
type ContentModeration struct {
	FlaggedFor          ModerationFlags `gorm:"embedded;embeddedPrefix:flagged_" json:"flaggedFor"`
	AutoHidden          bool            `json:"autoHidden"`
	ReviewedByModerator bool            `json:"reviewedByModerator"`
	AgeRestricted       bool            `json:"ageRestricted"`
	ModeratedAt         *time.Time      `json:"moderatedAt,omitempty"`
}

// Engagement 互动计数，每个计数与对应的用户集合保持一致
type Engagement struct {
	Views          int64                         `gorm:"default:0" json:"views"`
	ViewerIDs      pq.StringArray                `gorm:"column:viewer_ids;type:text[]" json:"viewerIds"`
	Reactions      datatypes.JSONSlice[Reaction] `gorm:"type:jsonb" json:"reactions"`
	TotalReactions int64                         `gorm:"default:0" json:"totalReactions"`
	CommentCount   int64                         `gorm:"default:0" json:"commentCount"`
	Shares         int64                         `gorm:"default:0" json:"shares"`
	SharerIDs      pq.StringArray                `gorm:"column:sharer_ids;type:text[]" json:"sharerIds"`
	Saves          int64                         `gorm:"default:0" json:"saves"`
	SaverIDs       pq.StringArray                `gorm:"column:saver_ids;type:text[]" json:"saverIds"`
	Reposts        int64                         `gorm:"default:0" json:"reposts"`
	ReposterIDs    pq.StringArray                `gorm:"column:reposter_ids;type:text[]" json:"reposterIds"`
}

// Post 帖子
type Post struct {
	baseModel.BaseModel
	AuthorID string   `gorm:"type:uuid;index;not null" json:"authorId"`
	PostType PostType `gorm:"size:16;index;not null" json:"postType"`

	Content Content                        `gorm:"embedded;embeddedPrefix:content_" json:"content"`
	Media   datatypes.JSONSlice[MediaItem] `gorm:"type:jsonb" json:"media"`
	Poll    datatypes.JSONType[*Poll]      `gorm:"type:jsonb" json:"poll"`

	GhostMode GhostMode `gorm:"embedded;embeddedPrefix:ghost_" json:"ghostMode"`

	ConfessionDisplayName string `json:"confessionDisplayName,omitempty"`
	ConfessionAvatarURL   string `json:"confessionAvatarUrl,omitempty"`

	OriginalPostID *string        `gorm:"type:uuid;index" json:"originalPostId,omitempty"`
	RepostComment  string         `json:"repostComment,omitempty"`
	RepostChain    pq.StringArray `gorm:"type:text[]" json:"repostChain"`
	RepostDepth    int            `gorm:"default:0" json:"repostDepth"`

	Visibility Visibility `gorm:"embedded;embeddedPrefix:visibility_" json:"visibility"`
	Expiration Expiration `gorm:"embedded;embeddedPrefix:expiration_" json:"expiration"`
	Engagement Engagement `gorm:"embedded;embeddedPrefix:engagement_" json:"engagement"`

	Location       datatypes.JSONType[*Location] `gorm:"type:jsonb" json:"location"`
	Hashtags       pq.StringArray                `gorm:"type:text[]" json:"hashtags"`
	MentionedUsers pq.StringArray                `gorm:"type:text[]" json:"mentionedUsers"`

	IsReported           bool              `json:"isReported"`
	ReportCount          int               `gorm:"default:0" json:"reportCount"`
	ModerationStatus     ModerationStatus  `gorm:"size:16;index" json:"moderationStatus"`
	ModerationNotes      string            `json:"moderationNotes,omitempty"`
	IsExplicitContent    bool              `json:"isExplicitContent"`
	AgeRestrictedContent bool              `json:"ageRestrictedContent"`
	ContentModeration    ContentModeration `gorm:"embedded;embeddedPrefix:moderation_" json:"contentModeration"`

	Trending      datatypes.JSONType[Trending]      `gorm:"type:jsonb" json:"trending"`
	AIInteraction datatypes.JSONType[AIInteraction] `gorm:"column:ai_interaction;type:jsonb" json:"aiInteraction"`

	IsDraft          bool       `json:"isDraft"`
	IsDeleted        bool       `gorm:"index" json:"isDeleted"`
	IsEdited         bool       `json:"isEdited"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
	LastEngagementAt time.Time  `json:"lastEngagementAt"`
}

// IsAvailable 未被删除
func (p *Post) IsAvailable() bool {
	return !p.IsDeleted && !p.DeletedAt.Valid
}

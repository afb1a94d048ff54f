package model

import "time"

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type MediaMetadata struct {
	Format      string `json:"format,omitempty"`
	Quality     string `json:"quality,omitempty"`
	IsProcessed bool   `json:"isProcessed"`
}

// MediaItem 帖子附带的媒体
type MediaItem struct {
	Type         MediaType     `json:"type"`
	URL          string        `json:"url"`
	ThumbnailURL string        `json:"thumbnailUrl,omitempty"`
	Duration     float64       `json:"duration,omitempty"`
	Size         int64         `json:"size,omitempty"`
	Dimensions   *Dimensions   `json:"dimensions,omitempty"`
	Metadata     MediaMetadata `json:"metadata"`
}

type PollOption struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	VoteCount int      `json:"voteCount"`
	Voters    []string `json:"voters"`
}

// Poll 投票，TotalVotes 等于各选项票数之和
type Poll struct {
	Question             string       `json:"question"`
	Options              []PollOption `json:"options"`
	AllowMultipleChoices bool         `json:"allowMultipleChoices"`
	ExpiresAt            *time.Time   `json:"expiresAt,omitempty"`
	TotalVotes           int          `json:"totalVotes"`
	IsActive             bool         `json:"isActive"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	Name        string       `json:"name,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	IsVisible   bool         `json:"isVisible"`
}

type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// Reaction 同类表情的计数和用户集合
type Reaction struct {
	Type  ReactionType `json:"type"`
	Emoji string       `json:"emoji"`
	Count int          `json:"count"`
	Users []string     `json:"users"`
}

type DemographicBreakdown struct {
	AgeGroups map[string]int `json:"ageGroups"`
	Locations map[string]int `json:"locations"`
}

// Trending 热度指标，由推荐系统回写
type Trending struct {
	EngagementScore      float64              `json:"engagementScore"`
	ViralityScore        float64              `json:"viralityScore"`
	TrendingRank         *int                 `json:"trendingRank,omitempty"`
	PeakEngagementTime   *time.Time           `json:"peakEngagementTime,omitempty"`
	DemographicBreakdown DemographicBreakdown `json:"demographicBreakdown"`
}

type AIComment struct {
	CommentID string    `json:"commentId"`
	AIPersona string    `json:"aiPersona"`
	Timestamp time.Time `json:"timestamp"`
}

type AIReaction struct {
	ReactionType string    `json:"reactionType"`
	Timestamp    time.Time `json:"timestamp"`
}

// AIInteraction AI 互动记录
type AIInteraction struct {
	HasAIEngagement bool         `json:"hasAiEngagement"`
	AIComments      []AIComment  `json:"aiComments"`
	AIReactions     []AIReaction `json:"aiReactions"`
}

package service

import (
	"context"
	"path"
	"strings"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	userRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/moderation"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/richtext"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/sanitize"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"

	"github.com/google/uuid"
)

// ProcessedContent 内容处理结果，交给 BuildPost 使用
type ProcessedContent struct {
	Text     string
	Media    []model.MediaItem
	Poll     *model.Poll
	Hashtags []string
	Mentions []string // 用户 id
	Verdict  moderation.Verdict
}

type ContentProcessor struct {
	users     userRepo.UserRepository
	sanitizer sanitize.Sanitizer
	moderator moderation.Moderator
}

func NewContentProcessor(users userRepo.UserRepository, sanitizer sanitize.Sanitizer, moderator moderation.Moderator) *ContentProcessor {
	return &ContentProcessor{users: users, sanitizer: sanitizer, moderator: moderator}
}

// Process 处理正文、媒体和投票，并执行内容审核
func (p *ContentProcessor) Process(ctx context.Context, req *CreatePostRequest) (*ProcessedContent, error) {
	poll, err := ProcessPoll(req.Poll)
	if err != nil {
		return nil, err
	}

	text := p.sanitizer.Text(req.Text)
	media := NormalizeMedia(req.Files)

	mentions, err := p.resolveMentions(ctx, text, req.MentionedUserIDs)
	if err != nil {
		return nil, err
	}

	mediaTypes := make([]string, 0, len(media))
	for _, m := range media {
		mediaTypes = append(mediaTypes, string(m.Type))
	}
	verdict, err := p.moderator.Check(ctx, text, mediaTypes)
	if err != nil {
		return nil, apperror.Infrastructure("content moderation", err)
	}

	return &ProcessedContent{
		Text:     text,
		Media:    media,
		Poll:     poll,
		Hashtags: MergeHashtags(text, req.CustomHashtags),
		Mentions: mentions,
		Verdict:  verdict,
	}, nil
}

// ProcessPoll 校验并初始化投票，nil 表示没有投票
func ProcessPoll(in *PollInput) (*model.Poll, error) {
	if in == nil {
		return nil, nil
	}

	question := strings.TrimSpace(in.Question)
	if question == "" || len(in.Options) < 2 {
		return nil, apperror.Validation("Poll must have a question and at least 2 options")
	}

	options := make([]model.PollOption, 0, len(in.Options))
	for _, opt := range in.Options {
		options = append(options, model.PollOption{
			ID:     uuid.NewString(),
			Text:   strings.TrimSpace(opt.Text),
			Voters: []string{},
		})
	}

	return &model.Poll{
		Question:             question,
		Options:              options,
		AllowMultipleChoices: in.AllowMultipleChoices,
		ExpiresAt:            in.ExpiresAt,
		IsActive:             true,
	}, nil
}

// NormalizeMedia 把上传结果转换成帖子媒体，保持顺序
func NormalizeMedia(files []uploader.StoredFile) []model.MediaItem {
	items := make([]model.MediaItem, 0, len(files))
	for _, f := range files {
		item := model.MediaItem{
			Type: mediaTypeOf(f.ResourceType),
			URL:  f.URL,
			Size: f.Size,
			Metadata: model.MediaMetadata{
				Format:      f.Format,
				IsProcessed: true,
			},
		}
		if item.Type == model.MediaVideo {
			item.ThumbnailURL = videoThumbnail(f.URL)
		}
		if item.Type != model.MediaImage {
			item.Duration = f.Duration
		}
		if f.Width > 0 && f.Height > 0 {
			item.Dimensions = &model.Dimensions{Width: f.Width, Height: f.Height}
		}
		items = append(items, item)
	}
	return items
}

func mediaTypeOf(resourceType string) model.MediaType {
	switch resourceType {
	case uploader.ResourceVideo:
		return model.MediaVideo
	case uploader.ResourceAudio:
		return model.MediaAudio
	default:
		return model.MediaImage
	}
}

// videoThumbnail 截帧图与视频同名，扩展名为 .jpg
func videoThumbnail(url string) string {
	if ext := path.Ext(path.Base(url)); ext != "" {
		return strings.TrimSuffix(url, ext) + ".jpg"
	}
	return url + ".jpg"
}

// MergeHashtags 正文中的标签在前，自定义标签在后，去重
func MergeHashtags(text string, custom []string) []string {
	normalized := make([]string, 0, len(custom))
	for _, tag := range custom {
		normalized = append(normalized, richtext.NormalizeHashtag(tag))
	}
	return richtext.MergeUnique(richtext.ExtractHashtags(text), normalized)
}

// resolveMentions 把正文中的 @用户名 解析为用户 id，不存在的用户名忽略
func (p *ContentProcessor) resolveMentions(ctx context.Context, text string, supplied []string) ([]string, error) {
	names := richtext.ExtractMentions(text)
	if len(names) == 0 {
		return richtext.MergeUnique(supplied), nil
	}

	ids, err := p.users.FindIDsByUsernames(ctx, names)
	if err != nil {
		return nil, apperror.Infrastructure("resolve mentions", err)
	}

	resolved := make([]string, 0, len(names))
	for _, name := range names {
		resolved = append(resolved, ids[name])
	}
	return richtext.MergeUnique(resolved, supplied), nil
}

package service

import (
	"context"
	"errors"
	"time"

	groupRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/group/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	postRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/repository"
	userRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/richtext"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/database"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/metrics"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultRequestTimeout = 10 * time.Second

var reactionEmojis = map[model.ReactionType]string{
	model.ReactionLike:  "👍",
	model.ReactionLove:  "❤️",
	model.ReactionLaugh: "😂",
	model.ReactionWow:   "😮",
	model.ReactionSad:   "😢",
	model.ReactionAngry: "😡",
}

type PostService interface {
	CreatePost(ctx context.Context, req *CreatePostRequest) (*model.Post, error)
	GetPost(ctx context.Context, id, viewerID string) (*model.Post, error)
	ListByHashtag(ctx context.Context, tag string, page utils.Pagination) (*utils.PageResult, error)
	React(ctx context.Context, postID, userID string, reactionType model.ReactionType, emoji string) (*model.Post, error)
	Unreact(ctx context.Context, postID, userID string, reactionType model.ReactionType) (*model.Post, error)
}

type postService struct {
	validator  *Validator
	processor  *ContentProcessor
	dispatcher *Dispatcher
	posts      postRepo.PostRepository
	users      userRepo.UserRepository
	groups     groupRepo.GroupRepository
	tx         database.Transactor
	timeout    time.Duration
	now        func() time.Time
	log        *zap.Logger
}

// Deps 发帖服务的依赖
type Deps struct {
	Validator      *Validator
	Processor      *ContentProcessor
	Dispatcher     *Dispatcher
	Posts          postRepo.PostRepository
	Users          userRepo.UserRepository
	Groups         groupRepo.GroupRepository
	Transactor     database.Transactor
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

func NewPostService(deps Deps) PostService {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &postService{
		validator:  deps.Validator,
		processor:  deps.Processor,
		dispatcher: deps.Dispatcher,
		posts:      deps.Posts,
		users:      deps.Users,
		groups:     deps.Groups,
		tx:         deps.Transactor,
		timeout:    timeout,
		now:        time.Now,
		log:        log,
	}
}

// CreatePost 校验 -> 内容处理 -> 组装 -> 事务内保存并更新计数 -> 异步后续动作
func (s *postService) CreatePost(ctx context.Context, req *CreatePostRequest) (post *model.Post, err error) {
	collector := metrics.GetGlobalCollector()
	defer func() {
		collector.RecordPostCreate(resultOf(err))
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	validated, err := s.validator.Validate(ctx, req)
	collector.ObserveStage("validate", start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	content, err := s.processor.Process(ctx, req)
	collector.ObserveStage("process", start)
	if err != nil {
		return nil, err
	}

	post = BuildPost(validated.User, content, req, s.now())
	if validated.Original != nil {
		LinkRepostChain(post, validated.Original)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = apperror.Infrastructure("request deadline exceeded before save", ctxErr)
		return nil, err
	}

	start = time.Now()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.Create(ctx, post); err != nil {
			return err
		}
		return s.dispatcher.ApplyCounters(ctx, post)
	})
	collector.ObserveStage("persist", start)
	if err != nil {
		s.log.Error("save post failed", zap.String("author_id", req.AuthorID), zap.Error(err))
		return nil, apperror.Infrastructure("save post", err)
	}

	// 作者统计已提交，此时再清缓存
	if inv, ok := s.users.(userRepo.CacheInvalidator); ok {
		inv.Invalidate(context.WithoutCancel(ctx), post.AuthorID)
	}

	s.dispatcher.ScheduleFollowUps(ctx, post, validated.User)

	s.log.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("post_type", string(post.PostType)),
		zap.Int("media", len(post.Media)),
	)
	return post, nil
}

// GetPost 获取帖子并记录一次浏览；不可见的帖子按不存在处理
func (s *postService) GetPost(ctx context.Context, id, viewerID string) (*model.Post, error) {
	post, err := s.loadVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if viewerID == "" || post.AuthorID == viewerID {
		return post, nil
	}

	updated, err := s.posts.UpdateEngagement(ctx, id, func(p *model.Post) bool {
		return model.RecordView(p, viewerID, s.now())
	})
	if err != nil {
		// 浏览计数失败不影响读取
		s.log.Warn("record view failed", zap.String("post_id", id), zap.Error(err))
		return post, nil
	}
	return updated, nil
}

func (s *postService) ListByHashtag(ctx context.Context, tag string, page utils.Pagination) (*utils.PageResult, error) {
	tag = richtext.NormalizeHashtag(tag)
	if tag == "" {
		return nil, apperror.Validation("Hashtag is required")
	}

	offset, limit := page.GetPageOffset()
	posts, total, err := s.posts.FindByHashtag(ctx, tag, offset, limit)
	if err != nil {
		return nil, apperror.Infrastructure("find posts by hashtag", err)
	}
	return &utils.PageResult{
		List:  posts,
		Total: total,
		Page:  page.Page,
		Limit: limit,
	}, nil
}

func (s *postService) React(ctx context.Context, postID, userID string, reactionType model.ReactionType, emoji string) (*model.Post, error) {
	defaultEmoji, ok := reactionEmojis[reactionType]
	if !ok {
		return nil, apperror.Validation("Invalid reaction type")
	}
	if emoji == "" {
		emoji = defaultEmoji
	}
	if _, err := s.loadVisible(ctx, postID, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.UpdateEngagement(ctx, postID, func(p *model.Post) bool {
		return model.AddReaction(p, userID, reactionType, emoji, s.now())
	})
	if err != nil {
		return nil, s.wrapStoreErr("add reaction", err)
	}
	return post, nil
}

func (s *postService) Unreact(ctx context.Context, postID, userID string, reactionType model.ReactionType) (*model.Post, error) {
	if _, ok := reactionEmojis[reactionType]; !ok {
		return nil, apperror.Validation("Invalid reaction type")
	}

	post, err := s.posts.UpdateEngagement(ctx, postID, func(p *model.Post) bool {
		return model.RemoveReaction(p, userID, reactionType)
	})
	if err != nil {
		return nil, s.wrapStoreErr("remove reaction", err)
	}
	return post, nil
}

// loadVisible 读取帖子并校验查看者权限
func (s *postService) loadVisible(ctx context.Context, id, viewerID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapStoreErr("load post", err)
	}
	if !post.IsAvailable() {
		return nil, apperror.NotFound("Post not found")
	}

	viewer := model.Viewer{ID: viewerID}
	if viewerID != "" {
		if user, err := s.users.GetByID(ctx, viewerID); err == nil {
			viewer.DateOfBirth = user.DateOfBirth
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Infrastructure("load viewer", err)
		}
	}
	if post.Visibility.Type == model.VisibilityGroup && viewerID != "" && post.AuthorID != viewerID {
		inGroup, err := s.isGroupMember(ctx, post.Visibility.GroupID, viewerID)
		if err != nil {
			return nil, err
		}
		viewer.InGroup = inGroup
	}
	if !model.CanUserInteract(post, viewer, s.now()) {
		return nil, apperror.NotFound("Post not found")
	}
	return post, nil
}

// isGroupMember 群组不存在时按非成员处理
func (s *postService) isGroupMember(ctx context.Context, groupID *string, userID string) (bool, error) {
	if groupID == nil || s.groups == nil {
		return false, nil
	}
	group, err := s.groups.GetByID(ctx, *groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperror.Infrastructure("load group", err)
	}
	return group.HasMember(userID), nil
}

func (s *postService) wrapStoreErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("Post not found")
	}
	return apperror.Infrastructure(op, err)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case apperror.IsValidation(err):
		return metrics.ResultValidation
	case apperror.IsNotFound(err):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}

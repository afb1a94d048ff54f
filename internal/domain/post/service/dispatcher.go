package service

import (
	"context"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	postRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/repository"
	userModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	userRepo "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/repository"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/push"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/worker"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// TaskSubmitter 异步任务池，*worker.WorkerPool 实现了该接口
type TaskSubmitter interface {
	Submit(ctx context.Context, task worker.Task) bool
}

// Dispatcher 帖子保存后的后续动作
type Dispatcher struct {
	posts     postRepo.PostRepository
	users     userRepo.UserRepository
	pool      TaskSubmitter
	push      push.PushService
	queue     EngagementQueue
	aiEnabled bool
	log       *zap.Logger
}

type DispatcherDeps struct {
	Posts     postRepo.PostRepository
	Users     userRepo.UserRepository
	Pool      TaskSubmitter
	Push      push.PushService
	Queue     EngagementQueue
	AIEnabled bool
	Logger    *zap.Logger
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		posts:     deps.Posts,
		users:     deps.Users,
		pool:      deps.Pool,
		push:      deps.Push,
		queue:     deps.Queue,
		aiEnabled: deps.AIEnabled,
		log:       log,
	}
}

// LinkRepostChain 在保存前写入转发链：原帖的链加上原帖 id
func LinkRepostChain(post, original *model.Post) {
	chain := make(pq.StringArray, 0, len(original.RepostChain)+1)
	chain = append(chain, original.RepostChain...)
	chain = append(chain, original.ID)

	originalID := original.ID
	post.OriginalPostID = &originalID
	post.RepostChain = chain
	post.RepostDepth = original.RepostDepth + 1
}

// ApplyCounters 更新原帖转发数和作者统计，需在保存帖子的同一事务中调用
func (d *Dispatcher) ApplyCounters(ctx context.Context, post *model.Post) error {
	if post.PostType == model.PostTypeRepost && post.OriginalPostID != nil {
		counted, err := d.posts.RecordRepost(ctx, *post.OriginalPostID, post.AuthorID)
		if err != nil {
			return err
		}
		if !counted {
			d.log.Debug("repost already counted",
				zap.String("original_post_id", *post.OriginalPostID),
				zap.String("user_id", post.AuthorID),
			)
		}
	}

	return d.users.IncrementPostStats(ctx, post.AuthorID,
		post.GhostMode.IsGhostPost,
		post.PostType == model.PostTypeConfession,
	)
}

// ScheduleFollowUps 提交提及通知和 AI 互动任务，失败只记录日志
func (d *Dispatcher) ScheduleFollowUps(ctx context.Context, post *model.Post, author *userModel.User) {
	ctx = context.WithoutCancel(ctx)

	actor := displayName(post, author)
	for _, recipient := range post.MentionedUsers {
		if recipient == post.AuthorID {
			continue
		}
		task := &MentionNotificationTask{
			push:        d.push,
			RecipientID: recipient,
			PostID:      post.ID,
			ActorName:   actor,
		}
		if !d.pool.Submit(ctx, task) {
			d.log.Warn("mention notification not scheduled",
				zap.String("post_id", post.ID),
				zap.String("recipient", recipient),
			)
		}
	}

	if !d.aiEnabled || d.queue == nil {
		return
	}
	task := newAIEngagementTask(d.queue, post.ID, post.AuthorID, time.Now())
	if !d.pool.Submit(ctx, task) {
		d.log.Warn("ai engagement job not scheduled", zap.String("post_id", post.ID))
	}
}

// displayName 匿名帖和告白帖不暴露用户名
func displayName(post *model.Post, author *userModel.User) string {
	switch {
	case post.PostType == model.PostTypeConfession && post.ConfessionDisplayName != "":
		return post.ConfessionDisplayName
	case post.GhostMode.IsGhostPost, post.PostType == model.PostTypeConfession:
		return "Someone"
	case author != nil && author.Username != "":
		return author.Username
	default:
		return "Someone"
	}
}

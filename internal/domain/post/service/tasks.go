package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/push"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
)

// AIEngagementQueueKey AI 互动任务的 Redis 列表
const AIEngagementQueueKey = "ai:engagement:jobs"

// AIEngagementJob 投递给 AI 互动服务的任务
type AIEngagementJob struct {
	JobID      string    `json:"jobId"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// EngagementQueue AI 互动任务队列
type EngagementQueue interface {
	Enqueue(ctx context.Context, job AIEngagementJob) error
}

type redisEngagementQueue struct {
	client *redis.Client
	key    string
}

func NewRedisEngagementQueue(client *redis.Client) EngagementQueue {
	return &redisEngagementQueue{client: client, key: AIEngagementQueueKey}
}

func (q *redisEngagementQueue) Enqueue(ctx context.Context, job AIEngagementJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// MentionNotificationTask 通知被 @ 的用户
type MentionNotificationTask struct {
	push        push.PushService
	RecipientID string
	PostID      string
	ActorName   string
}

func (t *MentionNotificationTask) Name() string { return "mention_notification" }

func (t *MentionNotificationTask) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := fmt.Sprintf("%s mentioned you in a post", t.ActorName)
	return t.push.PushToAccount(t.RecipientID, "New mention", body, map[string]string{
		"type":   "mention",
		"postId": t.PostID,
	})
}

// AIEngagementTask 投递 AI 互动任务；重试时沿用同一个 JobID 方便消费端去重
type AIEngagementTask struct {
	queue EngagementQueue
	Job   AIEngagementJob
}

func newAIEngagementTask(queue EngagementQueue, postID, authorID string, now time.Time) *AIEngagementTask {
	return &AIEngagementTask{
		queue: queue,
		Job: AIEngagementJob{
			JobID:      ksuid.New().String(),
			PostID:     postID,
			AuthorID:   authorID,
			EnqueuedAt: now,
		},
	}
}

func (t *AIEngagementTask) Name() string { return "ai_engagement" }

func (t *AIEngagementTask) Run(ctx context.Context) error {
	return t.queue.Enqueue(ctx, t.Job)
}

package service

import (
	"context"
	"sync"

	groupModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/group/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	userModel "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/worker"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockUserRepository 模拟用户仓库
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*userModel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *MockUserRepository) FindIDsByUsernames(ctx context.Context, usernames []string) (map[string]string, error) {
	args := m.Called(ctx, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockUserRepository) IncrementPostStats(ctx context.Context, id string, ghost, confession bool) error {
	args := m.Called(ctx, id, ghost, confession)
	return args.Error(0)
}

// MockGroupRepository 模拟群组仓库
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id string) (*groupModel.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*groupModel.Group), args.Error(1)
}

// MockPostRepository 模拟帖子仓库
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) RecordRepost(ctx context.Context, originalID, userID string) (bool, error) {
	args := m.Called(ctx, originalID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) FindByHashtag(ctx context.Context, tag string, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(ctx, tag, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) UpdateEngagement(ctx context.Context, id string, apply func(post *model.Post) bool) (*model.Post, error) {
	args := m.Called(ctx, id, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	post := args.Get(0).(*model.Post)
	apply(post)
	return post, args.Error(1)
}

// inlineTransactor 直接执行 fn，返回 fn 的错误
type inlineTransactor struct {
	calls int
}

func (t *inlineTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// committingTransactor 记录事务是否已提交
type committingTransactor struct {
	committed bool
}

func (t *committingTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	t.committed = true
	return nil
}

// invalidatingUsers 带缓存失效的用户仓库，记录失效时事务是否已提交
type invalidatingUsers struct {
	*MockUserRepository
	tx              *committingTransactor
	invalidated     []string
	afterCommitSeen []bool
}

func (u *invalidatingUsers) Invalidate(ctx context.Context, id string) {
	u.invalidated = append(u.invalidated, id)
	u.afterCommitSeen = append(u.afterCommitSeen, u.tx.committed)
}

// recordingPool 只记录提交的任务，不执行
type recordingPool struct {
	mu    sync.Mutex
	tasks []worker.Task
}

func (p *recordingPool) Submit(ctx context.Context, task worker.Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return true
}

func (p *recordingPool) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.tasks))
	for _, t := range p.tasks {
		names = append(names, t.Name())
	}
	return names
}

type pushCall struct {
	AccountID string
	Title     string
	Body      string
	Extras    map[string]string
}

type recordingPush struct {
	mu    sync.Mutex
	calls []pushCall
	err   error
}

func (p *recordingPush) PushToAccount(accountID, title, body string, extras map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, pushCall{AccountID: accountID, Title: title, Body: body, Extras: extras})
	return p.err
}

type recordingQueue struct {
	jobs []AIEngagementJob
	err  error
}

func (q *recordingQueue) Enqueue(ctx context.Context, job AIEngagementJob) error {
	q.jobs = append(q.jobs, job)
	return q.err
}

// memoryPostStore 并发安全的内存帖子仓库，转发计数语义与 SQL 条件更新一致
type memoryPostStore struct {
	mu    sync.Mutex
	posts map[string]*model.Post
}

func newMemoryPostStore(posts ...*model.Post) *memoryPostStore {
	s := &memoryPostStore{posts: make(map[string]*model.Post)}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *memoryPostStore) Create(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post
	return nil
}

func (s *memoryPostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.RepostChain = append([]string{}, p.RepostChain...)
	return &cp, nil
}

func (s *memoryPostStore) RecordRepost(ctx context.Context, originalID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[originalID]
	if !ok {
		return false, nil
	}
	for _, id := range p.Engagement.ReposterIDs {
		if id == userID {
			return false, nil
		}
	}
	p.Engagement.ReposterIDs = append(p.Engagement.ReposterIDs, userID)
	p.Engagement.Reposts++
	return true, nil
}

func (s *memoryPostStore) FindByHashtag(ctx context.Context, tag string, offset, limit int) ([]model.Post, int64, error) {
	return nil, 0, nil
}

func (s *memoryPostStore) UpdateEngagement(ctx context.Context, id string, apply func(post *model.Post) bool) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	apply(p)
	return p, nil
}

func (s *memoryPostStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *memoryPostStore) reposts(id string) (int64, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.posts[id]
	return p.Engagement.Reposts, append([]string{}, p.Engagement.ReposterIDs...)
}

package model

import (
	"slices"
	"time"
)

// Viewer 发起互动的用户
type Viewer struct {
	ID          string
	DateOfBirth *time.Time
	// InGroup 查看者是否属于帖子所在群组，只对群组帖子有意义
	InGroup bool
}

// AddReaction 添加表情回应，同一用户对同一类型只计一次
func AddReaction(p *Post, userID string, reactionType ReactionType, emoji string, now time.Time) bool {
	changed := false
	idx := slices.IndexFunc(p.Engagement.Reactions, func(r Reaction) bool { return r.Type == reactionType })

	if idx >= 0 {
		r := &p.Engagement.Reactions[idx]
		if !slices.Contains(r.Users, userID) {
			r.Users = append(r.Users, userID)
			r.Count = len(r.Users)
			changed = true
		}
	} else {
		p.Engagement.Reactions = append(p.Engagement.Reactions, Reaction{
			Type:  reactionType,
			Emoji: emoji,
			Count: 1,
			Users: []string{userID},
		})
		changed = true
	}

	recountReactions(p)
	if changed {
		p.LastEngagementAt = now
	}
	return changed
}

// RemoveReaction 移除表情回应，计数归零时删除该类型
func RemoveReaction(p *Post, userID string, reactionType ReactionType) bool {
	idx := slices.IndexFunc(p.Engagement.Reactions, func(r Reaction) bool { return r.Type == reactionType })
	if idx < 0 {
		return false
	}

	r := &p.Engagement.Reactions[idx]
	userIdx := slices.Index(r.Users, userID)
	if userIdx < 0 {
		return false
	}
	r.Users = slices.Delete(r.Users, userIdx, userIdx+1)
	r.Count = len(r.Users)
	if r.Count == 0 {
		p.Engagement.Reactions = slices.Delete(p.Engagement.Reactions, idx, idx+1)
	}

	recountReactions(p)
	return true
}

func recountReactions(p *Post) {
	var total int64
	for _, r := range p.Engagement.Reactions {
		total += int64(r.Count)
	}
	p.Engagement.TotalReactions = total
}

// RecordView 记录浏览，只统计去重后的已登录用户
func RecordView(p *Post, viewerID string, now time.Time) bool {
	if viewerID == "" || slices.Contains(p.Engagement.ViewerIDs, viewerID) {
		return false
	}
	p.Engagement.ViewerIDs = append(p.Engagement.ViewerIDs, viewerID)
	p.Engagement.Views = int64(len(p.Engagement.ViewerIDs))
	p.LastEngagementAt = now
	return true
}

// CanUserInteract 私密帖子只允许作者，群组帖子只允许作者和群成员，
// 年龄受限内容不对未成年人开放。没有关注关系数据，followers 按公开处理
func CanUserInteract(p *Post, viewer Viewer, now time.Time) bool {
	switch p.Visibility.Type {
	case VisibilityPrivate:
		return p.AuthorID == viewer.ID
	case VisibilityGroup:
		if p.AuthorID != viewer.ID && !viewer.InGroup {
			return false
		}
	}

	if p.AgeRestrictedContent && viewer.DateOfBirth != nil {
		if ageAt(*viewer.DateOfBirth, now) < 18 {
			return false
		}
	}
	return true
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

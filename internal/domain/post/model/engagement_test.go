package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertReactionInvariant(t *testing.T, p *Post) {
	t.Helper()
	var total int64
	for _, r := range p.Engagement.Reactions {
		assert.Equal(t, len(r.Users), r.Count, "reaction %s", r.Type)
		total += int64(r.Count)
	}
	assert.Equal(t, total, p.Engagement.TotalReactions)
}

func TestAddAndRemoveReaction(t *testing.T) {
	now := time.Now()
	p := &Post{}

	assert.True(t, AddReaction(p, "u1", ReactionLike, "👍", now))
	assert.True(t, AddReaction(p, "u2", ReactionLike, "👍", now))
	assert.False(t, AddReaction(p, "u1", ReactionLike, "👍", now))
	assert.True(t, AddReaction(p, "u1", ReactionLove, "❤️", now))
	assertReactionInvariant(t, p)
	assert.Equal(t, int64(3), p.Engagement.TotalReactions)
	assert.Equal(t, now, p.LastEngagementAt)

	assert.True(t, RemoveReaction(p, "u1", ReactionLove))
	assert.False(t, RemoveReaction(p, "u1", ReactionLove))
	assert.False(t, RemoveReaction(p, "nobody", ReactionLike))
	assertReactionInvariant(t, p)

	require.Len(t, p.Engagement.Reactions, 1)
	assert.Equal(t, ReactionLike, p.Engagement.Reactions[0].Type)
}

func TestRecordView(t *testing.T) {
	now := time.Now()
	p := &Post{}

	assert.True(t, RecordView(p, "u1", now))
	assert.False(t, RecordView(p, "u1", now))
	assert.False(t, RecordView(p, "", now))
	assert.True(t, RecordView(p, "u2", now))

	assert.Equal(t, int64(len(p.Engagement.ViewerIDs)), p.Engagement.Views)
	assert.Equal(t, int64(2), p.Engagement.Views)
}

func TestCanUserInteract(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	minor := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	adult := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("private is author only", func(t *testing.T) {
		p := &Post{AuthorID: "author", Visibility: Visibility{Type: VisibilityPrivate}}
		assert.True(t, CanUserInteract(p, Viewer{ID: "author"}, now))
		assert.False(t, CanUserInteract(p, Viewer{ID: "other"}, now))
	})

	t.Run("group is author and members only", func(t *testing.T) {
		p := &Post{AuthorID: "author", Visibility: Visibility{Type: VisibilityGroup}}
		assert.True(t, CanUserInteract(p, Viewer{ID: "author"}, now))
		assert.True(t, CanUserInteract(p, Viewer{ID: "member", InGroup: true}, now))
		assert.False(t, CanUserInteract(p, Viewer{ID: "outsider"}, now))
		assert.False(t, CanUserInteract(p, Viewer{}, now))
	})

	t.Run("age restricted", func(t *testing.T) {
		p := &Post{AgeRestrictedContent: true, Visibility: Visibility{Type: VisibilityPublic}}
		assert.False(t, CanUserInteract(p, Viewer{ID: "kid", DateOfBirth: &minor}, now))
		assert.True(t, CanUserInteract(p, Viewer{ID: "grown", DateOfBirth: &adult}, now))
		assert.True(t, CanUserInteract(p, Viewer{ID: "unknown"}, now))
	})

	t.Run("eighteenth birthday", func(t *testing.T) {
		dob := time.Date(2008, 6, 1, 0, 0, 0, 0, time.UTC)
		p := &Post{AgeRestrictedContent: true}
		assert.True(t, CanUserInteract(p, Viewer{ID: "v", DateOfBirth: &dob}, now))
	})
}

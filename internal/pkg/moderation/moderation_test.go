package moderation

import (
	"context"
	"testing"

	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newModerator(autoHide bool) *KeywordModerator {
	return NewKeywordModerator(config.ModerationConfig{
		NSFWTerms:      []string{"explicit"},
		ViolenceTerms:  []string{"kill you"},
		HateTerms:      []string{"slurword"},
		AutoHideOnHate: autoHide,
	}, zap.NewNop())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"cafe", "creme", "brulee"}, Tokenize("Café, Crème-Brûlée!"))
	assert.Empty(t, Tokenize("  ...  "))
}

func TestKeywordModerator(t *testing.T) {
	ctx := context.Background()

	t.Run("clean text", func(t *testing.T) {
		v, err := newModerator(true).Check(ctx, "lovely day at the beach", nil)
		require.NoError(t, err)
		assert.Equal(t, Verdict{}, v)
	})

	t.Run("nsfw is explicit and age restricted", func(t *testing.T) {
		v, err := newModerator(true).Check(ctx, "Very EXPLICIT stuff", nil)
		require.NoError(t, err)
		assert.True(t, v.Flags.NSFW)
		assert.True(t, v.IsExplicit)
		assert.True(t, v.AgeRestricted)
		assert.False(t, v.AutoHidden)
	})

	t.Run("violence phrase", func(t *testing.T) {
		v, err := newModerator(true).Check(ctx, "I will kill   you!", nil)
		require.NoError(t, err)
		assert.True(t, v.Flags.Violence)
		assert.True(t, v.AgeRestricted)
		assert.False(t, v.IsExplicit)
	})

	t.Run("phrase words apart do not match", func(t *testing.T) {
		v, err := newModerator(true).Check(ctx, "kill the lights, thank you", nil)
		require.NoError(t, err)
		assert.False(t, v.Flags.Violence)
	})

	t.Run("hate auto hides when configured", func(t *testing.T) {
		v, err := newModerator(true).Check(ctx, "slurword", nil)
		require.NoError(t, err)
		assert.True(t, v.AutoHidden)

		v, err = newModerator(false).Check(ctx, "slurword", nil)
		require.NoError(t, err)
		assert.True(t, v.Flags.Hate)
		assert.False(t, v.AutoHidden)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newModerator(true).Check(cctx, "text", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

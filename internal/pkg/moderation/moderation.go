// Package moderation 基于关键词的内容分类
package moderation

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Flags 命中的分类
type Flags struct {
	NSFW     bool `json:"nsfw"`
	Violence bool `json:"violence"`
	Hate     bool `json:"hate"`
}

// Verdict 审核结论，原样写入帖子
type Verdict struct {
	Flags         Flags `json:"flags"`
	AutoHidden    bool  `json:"autoHidden"`
	AgeRestricted bool  `json:"ageRestricted"`
	IsExplicit    bool  `json:"isExplicit"`
}

// Moderator 内容审核接口
type Moderator interface {
	Check(ctx context.Context, text string, mediaTypes []string) (Verdict, error)
}

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// Tokenize 小写、去重音并按非字母数字切分
func Tokenize(text string) []string {
	// transform.Transformer 有状态，每次调用重新创建
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	folded, _, err := transform.String(fold, bare)
	if err != nil {
		folded = bare
	}
	return strings.Fields(folded)
}

// KeywordModerator 按词表匹配正文
type KeywordModerator struct {
	nsfw           map[string]struct{}
	violence       map[string]struct{}
	hate           map[string]struct{}
	autoHideOnHate bool
	log            *zap.Logger
}

func NewKeywordModerator(cfg config.ModerationConfig, log *zap.Logger) *KeywordModerator {
	return &KeywordModerator{
		nsfw:           termSet(cfg.NSFWTerms),
		violence:       termSet(cfg.ViolenceTerms),
		hate:           termSet(cfg.HateTerms),
		autoHideOnHate: cfg.AutoHideOnHate,
		log:            log,
	}
}

// termSet 词表按同样的规则切分，多词短语只取整体匹配
func termSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		tokens := Tokenize(term)
		if len(tokens) == 0 {
			continue
		}
		set[strings.Join(tokens, " ")] = struct{}{}
	}
	return set
}

// Check 词表命中即标记；nsfw 或暴力内容限制年龄，仇恨内容按配置自动隐藏
func (m *KeywordModerator) Check(ctx context.Context, text string, mediaTypes []string) (Verdict, error) {
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	tokens := Tokenize(text)
	flags := Flags{
		NSFW:     matches(tokens, m.nsfw),
		Violence: matches(tokens, m.violence),
		Hate:     matches(tokens, m.hate),
	}

	v := Verdict{
		Flags:         flags,
		AgeRestricted: flags.NSFW || flags.Violence,
		AutoHidden:    flags.Hate && m.autoHideOnHate,
		IsExplicit:    flags.NSFW,
	}
	if flags.NSFW || flags.Violence || flags.Hate {
		m.log.Info("content flagged",
			zap.Bool("nsfw", flags.NSFW),
			zap.Bool("violence", flags.Violence),
			zap.Bool("hate", flags.Hate),
			zap.Int("media", len(mediaTypes)),
		)
	}
	return v, nil
}

// matches 检查单词以及相邻的两词、三词短语
func matches(tokens []string, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for i := range tokens {
		for n := 1; n <= 3 && i+n <= len(tokens); n++ {
			if _, ok := set[strings.Join(tokens[i:i+n], " ")]; ok {
				return true
			}
		}
	}
	return false
}

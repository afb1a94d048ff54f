// Package sanitize 清理用户输入的帖子文本
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer 文本清理接口
type Sanitizer interface {
	Text(raw string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// New 使用 StrictPolicy 去掉所有 HTML 标签，帖子正文只保留纯文本
func New() Sanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// 实体可能多层转义，还原后要重新过一遍策略
const maxPasses = 5

// Text 去除标签后还原实体，# 和 @ 等字符原样保留
func (s *textSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	out := raw
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// 仍未收敛时保留转义形式，不输出可解析的标签
	return strings.TrimSpace(s.policy.Sanitize(out))
}

// Package richtext 从帖子正文中提取话题标签和 @ 提及
package richtext

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`(?:^|[^\pL\pN_&#])#([\pL\pN_]+)`)
	mentionPattern = regexp.MustCompile(`(?:^|[^\pL\pN_])@([\pL\pN_][\pL\pN_.]*)`)
)

// NormalizeHashtag 小写并去掉开头的 #，空白标签返回空串
func NormalizeHashtag(tag string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(tag), "#"))
}

// ExtractHashtags 按出现顺序返回去重后的标签（已规范化）
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, NormalizeHashtag(m[1]))
	}
	return MergeUnique(tags)
}

// ExtractMentions 按出现顺序返回去重后的用户名
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimRight(m[1], "."))
	}
	return MergeUnique(names)
}

// MergeUnique 合并多个列表，保留首次出现的顺序，忽略空串
func MergeUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, v := range list {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

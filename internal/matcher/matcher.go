package matcher

import (
	"strings"

	"github.com/allanpk716/name_replacer/internal/domain"
)

// Buffer 可变的工作文本，一次运行独占
type Buffer struct {
	text string
}

// NewBuffer 创建工作文本
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text}
}

// Replace 精确、区分大小写、自左向右不重叠地替换全部 old。
// 返回替换前文本中的出现次数；old 为空时返回 InvalidPatternError。
func (b *Buffer) Replace(old, new string) (int, error) {
	if old == "" {
		return 0, &domain.InvalidPatternError{Pattern: old, Reason: "替换模式不能为空"}
	}
	n := strings.Count(b.text, old)
	if n == 0 {
		return 0, nil
	}
	b.text = strings.ReplaceAll(b.text, old, new)
	return n, nil
}

// String 返回当前文本
func (b *Buffer) String() string {
	return b.text
}

// GetMatchStats 统计各模式在内容中的出现次数，空模式被忽略
func GetMatchStats(content string, patterns []string) map[string]int {
	stats := make(map[string]int, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		stats[p] = strings.Count(content, p)
	}
	return stats
}

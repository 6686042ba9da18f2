package docx

import (
	"strings"

	"github.com/allanpk716/name_replacer/internal/matcher"
)

// SplitCounts 统计被拆分到相邻文本节点、因而无法替换的模式出现次数。
// 把所有文本节点直接拼接后计数，再减去各节点内部的计数。
// 段落边界同样会被拼接，所以结果只适合作为提示。
func (b *TextBuffer) SplitCounts(patterns []string) map[string]int {
	var nodes []string
	for _, seg := range b.segments {
		if seg.editable {
			nodes = append(nodes, seg.text)
		}
	}

	split := make(map[string]int)
	if len(nodes) < 2 {
		return split
	}

	whole := matcher.GetMatchStats(strings.Join(nodes, ""), patterns)
	inNode := make(map[string]int, len(whole))
	for _, node := range nodes {
		for p, n := range matcher.GetMatchStats(node, patterns) {
			inNode[p] += n
		}
	}

	for p, n := range whole {
		if d := n - inNode[p]; d > 0 {
			split[p] = d
		}
	}
	return split
}

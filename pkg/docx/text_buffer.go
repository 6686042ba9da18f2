package docx

import (
	"html"
	"regexp"
	"strings"

	"github.com/allanpk716/name_replacer/internal/domain"
)

// textNodePattern 匹配 <w:t> 与 <w:t xml:space="preserve"> 文本节点，不匹配 <w:tbl>、<w:tab/> 等
var textNodePattern = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)

var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

type segment struct {
	text     string
	editable bool
}

// TextBuffer 只在文本节点内替换的工作文本，标签与属性保持不变。
// 被拆分到多个文本节点的词无法匹配。
type TextBuffer struct {
	segments []segment
}

// NewTextBuffer 将正文 XML 切分为标签段与文本段
func NewTextBuffer(content string) *TextBuffer {
	var segments []segment
	last := 0
	for _, m := range textNodePattern.FindAllStringSubmatchIndex(content, -1) {
		segments = append(segments,
			segment{text: content[last:m[2]]},
			segment{text: html.UnescapeString(content[m[2]:m[3]]), editable: true},
		)
		last = m[3]
	}
	segments = append(segments, segment{text: content[last:]})
	return &TextBuffer{segments: segments}
}

// Replace 在每个文本节点内精确替换，返回替换前的出现总数
func (b *TextBuffer) Replace(old, new string) (int, error) {
	if old == "" {
		return 0, &domain.InvalidPatternError{Pattern: old, Reason: "替换模式不能为空"}
	}
	total := 0
	for i := range b.segments {
		seg := &b.segments[i]
		if !seg.editable {
			continue
		}
		n := strings.Count(seg.text, old)
		if n == 0 {
			continue
		}
		seg.text = strings.ReplaceAll(seg.text, old, new)
		total += n
	}
	return total, nil
}

// String 重新组装正文 XML，文本节点内容会被转义
func (b *TextBuffer) String() string {
	var sb strings.Builder
	for _, seg := range b.segments {
		if seg.editable {
			sb.WriteString(xmlTextEscaper.Replace(seg.text))
		} else {
			sb.WriteString(seg.text)
		}
	}
	return sb.String()
}

// Text 返回全部文本节点内容（不含标签），按节点顺序以换行分隔
func (b *TextBuffer) Text() string {
	var parts []string
	for _, seg := range b.segments {
		if seg.editable {
			parts = append(parts, seg.text)
		}
	}
	return strings.Join(parts, "\n")
}

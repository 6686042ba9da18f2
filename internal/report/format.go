package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// WriteText 以控制台格式输出报告，verbose 时包含明细
func WriteText(w io.Writer, r *Report, verbose bool) error {
	var b strings.Builder
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "* %s Replacements:\n", c.Label)
		if verbose {
			for _, e := range c.Entries {
				b.WriteString(formatEntry(e))
				b.WriteByte('\n')
			}
		}
		fmt.Fprintf(&b, "  SubTotal: %d\n", c.Subtotal)
	}
	fmt.Fprintf(&b, "Total Replacements: %d\n", r.Total)
	fmt.Fprintf(&b, "Time Taken: %.3f seconds\n", r.Elapsed.Seconds())

	_, err := io.WriteString(w, b.String())
	return err
}

// formatEntry 字面项为 "key → value:n"，名字项为 "target :total (label-n, ...)"
func formatEntry(e Entry) string {
	if len(e.Labels) == 0 {
		return fmt.Sprintf("    %s → %s:%d", e.Source, e.Target, e.Total)
	}
	parts := make([]string, len(e.Labels))
	for i, l := range e.Labels {
		parts[i] = fmt.Sprintf("%s-%d", l.Label, l.Count)
	}
	return fmt.Sprintf("    %s :%d (%s)", e.Target, e.Total, strings.Join(parts, ", "))
}

// MarshalJSON 报告的 JSON 表示
func MarshalJSON(r *Report) ([]byte, error) {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化报告失败: %w", err)
	}
	return data, nil
}

// Fields 报告摘要的结构化日志字段
func (r *Report) Fields() []zap.Field {
	subtotals := make(map[string]int, len(r.Categories))
	for _, c := range r.Categories {
		subtotals[c.Key] = c.Subtotal
	}
	return []zap.Field{
		zap.String("run_id", r.RunID),
		zap.Int("total", r.Total),
		zap.Duration("elapsed", r.Elapsed),
		zap.Any("subtotals", subtotals),
	}
}

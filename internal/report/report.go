// Package report 汇总一次替换运行的总数、各类别小计、明细与耗时。
package report

import (
	"time"
)

// LabelCount 单个标签（敬称或 NA）的替换次数
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Entry 类别中的一条明细
type Entry struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Total  int          `json:"total"`
	Labels []LabelCount `json:"labels,omitempty"`
}

// CategoryReport 单个类别的结果
type CategoryReport struct {
	Label    string  `json:"label"`
	Key      string  `json:"key"`
	Kind     string  `json:"kind"`
	Subtotal int     `json:"subtotal"`
	Entries  []Entry `json:"entries,omitempty"`
}

// Report 一次运行的完整报告
type Report struct {
	RunID      string           `json:"run_id"`
	Total      int              `json:"total"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
	Categories []CategoryReport `json:"categories"`
}

// Category 按配置键查找类别报告
func (r *Report) Category(key string) (CategoryReport, bool) {
	if r == nil {
		return CategoryReport{}, false
	}
	for _, c := range r.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryReport{}, false
}

// Reporter 只做累加，不参与任何决策
type Reporter struct {
	runID   string
	start   time.Time
	now     func() time.Time
	total   int
	current *CategoryReport
	done    []CategoryReport
}

// NewReporter 创建报告累加器并开始计时
func NewReporter(runID string) *Reporter {
	return newReporter(runID, time.Now)
}

func newReporter(runID string, now func() time.Time) *Reporter {
	return &Reporter{runID: runID, start: now(), now: now}
}

// BeginCategory 开始一个类别，未结束的上一个类别会被自动结束
func (r *Reporter) BeginCategory(label, key, kind string) {
	r.EndCategory()
	r.current = &CategoryReport{Label: label, Key: key, Kind: kind}
}

// AddLiteral 记录一条字面替换，次数为零时只计入总数不记明细
func (r *Reporter) AddLiteral(key, value string, n int) {
	r.add(n)
	if n > 0 && r.current != nil {
		r.current.Entries = append(r.current.Entries, Entry{Source: key, Target: value, Total: n})
	}
}

// AddName 记录一个名字变体的各标签次数，只保留非零标签
func (r *Reporter) AddName(source, target string, labels []LabelCount) int {
	total := 0
	var nonzero []LabelCount
	for _, l := range labels {
		total += l.Count
		if l.Count > 0 {
			nonzero = append(nonzero, l)
		}
	}
	r.add(total)
	if total > 0 && r.current != nil {
		r.current.Entries = append(r.current.Entries, Entry{
			Source: source,
			Target: target,
			Total:  total,
			Labels: nonzero,
		})
	}
	return total
}

func (r *Reporter) add(n int) {
	r.total += n
	if r.current != nil {
		r.current.Subtotal += n
	}
}

// EndCategory 结束当前类别
func (r *Reporter) EndCategory() {
	if r.current == nil {
		return
	}
	r.done = append(r.done, *r.current)
	r.current = nil
}

// Total 当前累计的替换总数
func (r *Reporter) Total() int {
	return r.total
}

// Finish 结束计时并返回报告
func (r *Reporter) Finish() *Report {
	r.EndCategory()
	categories := make([]CategoryReport, len(r.done))
	copy(categories, r.done)
	return &Report{
		RunID:      r.runID,
		Total:      r.total,
		Elapsed:    r.now().Sub(r.start),
		Categories: categories,
	}
}

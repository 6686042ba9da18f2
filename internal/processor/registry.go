package processor

// Registry 记录本次运行中已被认领的名字原文及其替换次数。
// 一旦登记（即使次数为零），后续类别不再尝试该原文。每次运行必须使用新的实例。
type Registry struct {
	claimed map[string]int
}

// NewRegistry 创建空的去重登记表
func NewRegistry() *Registry {
	return &Registry{claimed: make(map[string]int)}
}

// Claim 登记原文及其替换次数
func (r *Registry) Claim(source string, count int) {
	r.claimed[source] = count
}

// Count 返回原文登记时的替换次数，未登记时 ok 为 false
func (r *Registry) Count(source string) (int, bool) {
	n, ok := r.claimed[source]
	return n, ok
}

// Len 已登记的原文数量
func (r *Registry) Len() int {
	return len(r.claimed)
}

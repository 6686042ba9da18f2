package names

import "github.com/allanpk716/name_replacer/internal/domain"

// BareLabel 不带敬称替换的计数标签
const BareLabel = "NA"

// Form 一个变体的一种具体替换形式
type Form struct {
	Pattern     string
	Replacement string
	Label       string
}

// Policy 决定变体可尝试哪些替换形式
type Policy struct {
	// SingleCharFilter 开启时单字符原文不做无敬称替换（带敬称的形式不受影响）
	SingleCharFilter bool
}

// AllowBare 变体是否可以尝试无敬称替换
func (p Policy) AllowBare(v domain.NameVariant) bool {
	return v.BareEligible && (!v.SingleChar() || !p.SingleCharFilter)
}

// Forms 返回变体的替换形式：先按配置顺序列出全部敬称形式，最后是无敬称形式（若允许）。
// 敬称形式必须先于无敬称形式执行，否则较短的裸名会吃掉敬称匹配的前半部分。
func (p Policy) Forms(v domain.NameVariant, honorifics []domain.Honorific) []Form {
	forms := make([]Form, 0, len(honorifics)+1)
	for _, h := range honorifics {
		forms = append(forms, Form{
			Pattern:     v.Source + h.Suffix,
			Replacement: v.Target + "-" + h.Label,
			Label:       h.Label,
		})
	}
	if p.AllowBare(v) {
		forms = append(forms, Form{
			Pattern:     v.Source,
			Replacement: v.Target,
			Label:       BareLabel,
		})
	}
	return forms
}

// Package names 由角色的名字片段生成原文/译文变体，并决定每个变体可使用的替换形式。
package names

import (
	"iter"
	"strings"

	"github.com/allanpk716/name_replacer/internal/domain"
)

// DefaultSeparators 原文中名字片段之间可能出现的分隔符：中点与无分隔
var DefaultSeparators = []string{"・", ""}

// targetSeparator 译文片段之间的分隔符
const targetSeparator = " "

// Variants 按 sel 选择的形态依次产出变体：
// 先是全部组合（片段数 2..N，保持原有顺序，每个分隔符各一个），再是首片段，最后是末片段。
// 每个变体的 BareEligible 取决于其形态是否在 suppress 中。
func Variants(c domain.Character, sel, suppress domain.ShapeSet, separators []string) iter.Seq[domain.NameVariant] {
	return func(yield func(domain.NameVariant) bool) {
		n := len(c.Source)
		if n == 0 {
			return
		}

		if sel.Has(domain.ShapeFull) {
			for k := 2; k <= n; k++ {
				for comb := range combinations(n, k) {
					target := join(c.Target, comb, targetSeparator)
					for _, sep := range separators {
						v := domain.NameVariant{
							Source:       join(c.Source, comb, sep),
							Target:       target,
							Shape:        domain.ShapeFull,
							BareEligible: suppress.Has(domain.ShapeFull),
						}
						if !yield(v) {
							return
						}
					}
				}
			}
		}

		if sel.Has(domain.ShapeFirst) {
			v := domain.NameVariant{
				Source:       c.Source[0],
				Target:       c.Target[0],
				Shape:        domain.ShapeFirst,
				BareEligible: suppress.Has(domain.ShapeFirst),
			}
			if !yield(v) {
				return
			}
		}

		if sel.Has(domain.ShapeLast) {
			yield(domain.NameVariant{
				Source:       c.Source[n-1],
				Target:       c.Target[n-1],
				Shape:        domain.ShapeLast,
				BareEligible: suppress.Has(domain.ShapeLast),
			})
		}
	}
}

// combinations 以字典序产出从 n 个下标中取 k 个的全部组合。
// 产出的切片在下一次迭代时会被复用。
func combinations(n, k int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if k <= 0 || k > n {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			if !yield(idx) {
				return
			}
			// 找到最右侧还能增加的位置
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

func join(fragments []string, idx []int, sep string) string {
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = fragments[j]
	}
	return strings.Join(parts, sep)
}

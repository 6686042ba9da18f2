package domain

import (
	"strings"
	"unicode/utf8"
)

// Shape 名字变体的形态（单个标志位）
type Shape uint8

const (
	// ShapeFull 两个及以上片段的全部组合
	ShapeFull Shape = 1 << iota
	// ShapeFirst 仅第一个片段
	ShapeFirst
	// ShapeLast 仅最后一个片段
	ShapeLast
)

// String 返回形态名称
func (s Shape) String() string {
	switch s {
	case ShapeFull:
		return "full"
	case ShapeFirst:
		return "first"
	case ShapeLast:
		return "last"
	default:
		return "unknown"
	}
}

// ShapeSet 形态集合，用于变体选择与去敬称许可
type ShapeSet uint8

const (
	ShapesNone ShapeSet = 0
	ShapesAll  ShapeSet = ShapeSet(ShapeFull | ShapeFirst | ShapeLast)
)

// NewShapeSet 由若干形态构造集合
func NewShapeSet(shapes ...Shape) ShapeSet {
	var set ShapeSet
	for _, s := range shapes {
		set |= ShapeSet(s)
	}
	return set
}

// Has 判断集合是否包含指定形态
func (s ShapeSet) Has(shape Shape) bool {
	return s&ShapeSet(shape) != 0
}

// String 返回形如 "full|last" 的描述
func (s ShapeSet) String() string {
	if s == ShapesNone {
		return "none"
	}
	var parts []string
	for _, shape := range []Shape{ShapeFull, ShapeFirst, ShapeLast} {
		if s.Has(shape) {
			parts = append(parts, shape.String())
		}
	}
	return strings.Join(parts, "|")
}

// Character 一个角色的名字：原文片段与译文片段一一对应
type Character struct {
	Source []string // 原文片段（如 姓、名）
	Target []string // 译文片段
}

// NewCharacter 创建角色，片段数量不一致时返回 ConfigMismatchError
func NewCharacter(source, target []string) (Character, error) {
	if len(source) != len(target) {
		return Character{}, &ConfigMismatchError{
			Source:          strings.Join(source, " "),
			Target:          strings.Join(target, " "),
			SourceFragments: len(source),
			TargetFragments: len(target),
		}
	}
	for _, fragment := range source {
		if fragment == "" {
			return Character{}, &InvalidPatternError{
				Pattern: strings.Join(source, " "),
				Reason:  "名字片段不能为空",
			}
		}
	}
	return Character{
		Source: append([]string(nil), source...),
		Target: append([]string(nil), target...),
	}, nil
}

// ParseCharacter 由配置项构造角色。
// 译文按单个空格切分；原文片段先以空格连接再切分，因此字符串与数组两种写法等价。
func ParseCharacter(target string, source []string) (Character, error) {
	return NewCharacter(
		strings.Split(strings.Join(source, FragmentSeparator), FragmentSeparator),
		strings.Split(target, FragmentSeparator),
	)
}

// FragmentSeparator 配置中名字片段之间的分隔符
const FragmentSeparator = " "

// NameVariant 由角色生成的一个候选替换
type NameVariant struct {
	Source       string // 原文写法，同时是去重键
	Target       string // 译文写法
	Shape        Shape
	BareEligible bool // 是否允许不带敬称的替换
}

// SingleChar 原文是否只有一个字符
func (v NameVariant) SingleChar() bool {
	return utf8.RuneCountInString(v.Source) <= 1
}

// Honorific 敬称后缀与其译文标签，如 "さん" -> "san"
type Honorific struct {
	Suffix string
	Label  string
}

// Pair 字面替换项
type Pair struct {
	Key   string
	Value string
}

// NameEntry 名字类配置项：译文全名 -> 原文片段
type NameEntry struct {
	Target string
	Source []string
}

// RuleSet 已解析的规则配置，各分区保持配置文件中的顺序
type RuleSet struct {
	Honorifics []Honorific
	Literals   map[string][]Pair
	Names      map[string][]NameEntry
}

// NewRuleSet 创建空规则集
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Literals: make(map[string][]Pair),
		Names:    make(map[string][]NameEntry),
	}
}

// Has 判断配置中是否存在指定分区
func (rs *RuleSet) Has(key string) bool {
	if rs == nil {
		return false
	}
	if _, ok := rs.Literals[key]; ok {
		return true
	}
	_, ok := rs.Names[key]
	return ok
}

// Substituter 工作文本上的替换原语
type Substituter interface {
	// Replace 精确替换全部 old，返回替换前文本中的出现次数
	Replace(old, new string) (int, error)
	String() string
}

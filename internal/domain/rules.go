package domain

// Kind 规则类别的种类
type Kind int

const (
	KindLiteral Kind = iota
	KindName
)

// String 返回种类名称
func (k Kind) String() string {
	if k == KindName {
		return "name"
	}
	return "literal"
}

// Category 流水线中的一个规则类别
type Category struct {
	Label    string // 报告中显示的标题
	Key      string // 配置文件中的键
	Kind     Kind
	Select   ShapeSet // 生成哪些形态的变体（仅名字类）
	Suppress ShapeSet // 哪些形态允许不带敬称替换（仅名字类）
}

// 配置文件中识别的键
const (
	KeySpecials    = "specials"
	KeyBasic       = "basic"
	KeyNames       = "names"
	KeyLastNames   = "last-names"
	KeyFullNames   = "full-names"
	KeySingleNames = "single-names"
	KeyNameLike    = "name-like"
	KeyCleaningUp  = "cleaning-up"
	KeyHonorifics  = "honorifics"
)

// DefaultCategories 返回固定的类别顺序。
// 顺序本身决定了歧义名字由哪个类别认领，不能调整。
func DefaultCategories() []Category {
	return []Category{
		{Label: "Special", Key: KeySpecials, Kind: KindLiteral},
		{Label: "Basic", Key: KeyBasic, Kind: KindLiteral},
		{Label: "Imp Names", Key: KeyNames, Kind: KindName,
			Select: ShapesAll, Suppress: ShapesAll},
		{Label: "Semi Imp Names", Key: KeyLastNames, Kind: KindName,
			Select: ShapesAll, Suppress: NewShapeSet(ShapeFull, ShapeLast)},
		{Label: "Remaining Names", Key: KeyFullNames, Kind: KindName,
			Select: ShapesAll, Suppress: NewShapeSet(ShapeFull)},
		{Label: "Single Names", Key: KeySingleNames, Kind: KindName,
			Select: NewShapeSet(ShapeLast), Suppress: NewShapeSet(ShapeLast)},
		{Label: "Name like", Key: KeyNameLike, Kind: KindName,
			Select: NewShapeSet(ShapeLast), Suppress: ShapesNone},
		{Label: "Cleaning Up", Key: KeyCleaningUp, Kind: KindLiteral},
	}
}

// CategoryKind 返回配置键对应的种类，未知键返回 false
func CategoryKind(key string) (Kind, bool) {
	for _, c := range DefaultCategories() {
		if c.Key == key {
			return c.Kind, true
		}
	}
	return 0, false
}

// Rule 类别实例化后的规则：LiteralRule 或 NameRule
type Rule interface {
	isRule()
}

// LiteralRule 字面替换规则
type LiteralRule struct {
	Pairs []Pair
}

// NameRule 名字替换规则
type NameRule struct {
	Entities []NameEntry
	Select   ShapeSet
	Suppress ShapeSet
}

func (LiteralRule) isRule() {}
func (NameRule) isRule()    {}

// Stage 流水线中的一步
type Stage struct {
	Category Category
	Rule     Rule
}

// BuildStages 按类别顺序从规则集中实例化各步骤，配置中缺失的类别被跳过
func BuildStages(categories []Category, rules *RuleSet) []Stage {
	var stages []Stage
	if rules == nil {
		return stages
	}
	for _, c := range categories {
		switch c.Kind {
		case KindLiteral:
			pairs, ok := rules.Literals[c.Key]
			if !ok {
				continue
			}
			stages = append(stages, Stage{Category: c, Rule: LiteralRule{Pairs: pairs}})
		case KindName:
			entities, ok := rules.Names[c.Key]
			if !ok {
				continue
			}
			stages = append(stages, Stage{Category: c, Rule: NameRule{
				Entities: entities,
				Select:   c.Select,
				Suppress: c.Suppress,
			}})
		}
	}
	return stages
}

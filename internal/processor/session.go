package processor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/allanpk716/name_replacer/internal/config"
	"github.com/allanpk716/name_replacer/internal/domain"
	"github.com/allanpk716/name_replacer/internal/names"
	"github.com/allanpk716/name_replacer/internal/report"
)

// Session 一次流水线运行：工作文本、去重登记表与报告累加器均归其独占
type Session struct {
	text       domain.Substituter
	registry   *Registry
	reporter   *report.Reporter
	policy     names.Policy
	separators []string
	logger     *zap.Logger
}

// NewSession 创建运行会话。registry 与 reporter 由调用方为每次运行单独创建。
func NewSession(text domain.Substituter, registry *Registry, reporter *report.Reporter, opts config.Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		text:       text,
		registry:   registry,
		reporter:   reporter,
		policy:     names.Policy{SingleCharFilter: opts.SingleCharFilter},
		separators: opts.Separators,
		logger:     logger,
	}
}

// Run 按顺序执行各步骤，任何错误都会立即终止整个运行
func (s *Session) Run(stages []domain.Stage, honorifics []domain.Honorific) error {
	for _, stage := range stages {
		c := stage.Category
		s.reporter.BeginCategory(c.Label, c.Key, c.Kind.String())
		before := s.reporter.Total()

		var err error
		switch rule := stage.Rule.(type) {
		case domain.LiteralRule:
			err = s.applyLiterals(rule)
		case domain.NameRule:
			err = s.applyNames(rule, honorifics)
		default:
			err = fmt.Errorf("未知的规则类型: %T", stage.Rule)
		}
		if err != nil {
			return fmt.Errorf("类别 %s 处理失败: %w", c.Label, err)
		}

		s.reporter.EndCategory()
		s.logger.Debug("类别处理完成",
			zap.String("category", c.Label),
			zap.String("key", c.Key),
			zap.Int("subtotal", s.reporter.Total()-before))
	}
	return nil
}

// applyLiterals 按配置顺序逐项字面替换
func (s *Session) applyLiterals(rule domain.LiteralRule) error {
	for _, pair := range rule.Pairs {
		n, err := s.text.Replace(pair.Key, pair.Value)
		if err != nil {
			return err
		}
		s.reporter.AddLiteral(pair.Key, pair.Value, n)
	}
	return nil
}

// applyNames 展开每个角色的变体，跳过已认领的原文，先替换敬称形式再替换裸名
func (s *Session) applyNames(rule domain.NameRule, honorifics []domain.Honorific) error {
	for _, entity := range rule.Entities {
		character, err := domain.ParseCharacter(entity.Target, entity.Source)
		if err != nil {
			return fmt.Errorf("角色 %q: %w", entity.Target, err)
		}

		for v := range names.Variants(character, rule.Select, rule.Suppress, s.separators) {
			if n, ok := s.registry.Count(v.Source); ok {
				s.logger.Debug("原文已被前面的类别认领，跳过",
					zap.String("source", v.Source),
					zap.Int("count", n))
				continue
			}

			forms := s.policy.Forms(v, honorifics)
			labels := make([]report.LabelCount, 0, len(forms))
			for _, f := range forms {
				n, err := s.text.Replace(f.Pattern, f.Replacement)
				if err != nil {
					return fmt.Errorf("角色 %q: %w", entity.Target, err)
				}
				labels = addLabel(labels, f.Label, n)
			}

			total := s.reporter.AddName(v.Source, v.Target, labels)
			s.registry.Claim(v.Source, total)
		}
	}
	return nil
}

// addLabel 同一标签（多个后缀映射到同一标签时）的次数累加
func addLabel(labels []report.LabelCount, label string, n int) []report.LabelCount {
	for i := range labels {
		if labels[i].Label == label {
			labels[i].Count += n
			return labels
		}
	}
	return append(labels, report.LabelCount{Label: label, Count: n})
}

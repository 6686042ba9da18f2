package processor

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allanpk716/name_replacer/internal/config"
	"github.com/allanpk716/name_replacer/internal/domain"
	"github.com/allanpk716/name_replacer/internal/matcher"
	"github.com/allanpk716/name_replacer/internal/report"
)

// Processor 替换流水线入口。只持有只读的选项与类别顺序，可被多个运行并发共享；
// 每次 Replace 都会创建独立的工作文本、去重登记表与报告。
type Processor struct {
	opts       config.Options
	categories []domain.Category
	logger     *zap.Logger
}

// NewProcessor 创建处理器，logger 为 nil 时不输出日志
func NewProcessor(opts config.Options, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Separators == nil {
		opts.Separators = config.DefaultOptions().Separators
	}
	return &Processor{
		opts:       opts,
		categories: domain.DefaultCategories(),
		logger:     logger,
	}
}

// Replace 对文本执行完整的规则流水线，返回替换后的文本与报告。
// 出错时不返回任何部分结果。
func (p *Processor) Replace(text string, rules *domain.RuleSet) (string, *report.Report, error) {
	buf := matcher.NewBuffer(text)
	rep, err := p.Run(buf, rules)
	if err != nil {
		return "", nil, err
	}
	return buf.String(), rep, nil
}

// Run 在给定的工作文本上执行流水线。工作文本与本次运行绑定，出错时其内容不应再被使用。
func (p *Processor) Run(text domain.Substituter, rules *domain.RuleSet) (*report.Report, error) {
	if rules == nil {
		rules = domain.NewRuleSet()
	}

	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	for _, c := range p.categories {
		if !rules.Has(c.Key) {
			logger.Debug("配置中没有该类别，跳过", zap.String("category", c.Label), zap.String("key", c.Key))
		}
	}

	registry := NewRegistry()
	reporter := report.NewReporter(runID)
	session := NewSession(text, registry, reporter, p.opts, logger)

	if err := session.Run(domain.BuildStages(p.categories, rules), rules.Honorifics); err != nil {
		return nil, fmt.Errorf("替换流水线失败: %w", err)
	}
	logger.Debug("名字原文登记完成", zap.Int("claimed", registry.Len()))

	rep := reporter.Finish()
	p.logger.Info("替换完成", rep.Fields()...)
	return rep, nil
}

// Categories 返回处理器使用的类别顺序
func (p *Processor) Categories() []domain.Category {
	out := make([]domain.Category, len(p.categories))
	copy(out, p.categories)
	return out
}

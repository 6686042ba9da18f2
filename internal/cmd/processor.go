package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/allanpk716/name_replacer/internal/domain"
	"github.com/allanpk716/name_replacer/internal/matcher"
	"github.com/allanpk716/name_replacer/internal/processor"
	"github.com/allanpk716/name_replacer/internal/report"
	"github.com/allanpk716/name_replacer/internal/textio"
	"github.com/allanpk716/name_replacer/pkg/docx"
)

const reportSuffix = ".report.json"

// supportedExtensions 批量模式会处理的文件类型
var supportedExtensions = map[string]bool{
	".txt":  true,
	".docx": true,
}

// Runner 把规则流水线应用到磁盘上的文件
type Runner struct {
	processor   *processor.Processor
	rules       *domain.RuleSet
	encoding    textio.Encoding
	dryRun      bool
	writeReport bool
	verbose     bool
	out         io.Writer
	logger      *zap.Logger
}

// NewRunner 根据命令行参数创建 Runner，报告输出到 out
func NewRunner(p *processor.Processor, rules *domain.RuleSet, args *CommandLineArgs, out io.Writer, logger *zap.Logger) (*Runner, error) {
	enc, err := textio.ParseEncoding(args.Encoding)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		processor:   p,
		rules:       rules,
		encoding:    enc,
		dryRun:      args.DryRun,
		writeReport: args.WriteReport,
		verbose:     args.Verbose,
		out:         out,
		logger:      logger,
	}, nil
}

// ExecuteProcessing 执行处理逻辑
func ExecuteProcessing(ctx context.Context, r *Runner, args *CommandLineArgs) error {
	if args.InputFile != "" {
		return r.ProcessSingleFile(ctx, args.InputFile, args.OutputFile)
	}
	return r.ProcessBatchFiles(ctx, args.InputDir, args.OutputDir)
}

// ProcessSingleFile 处理单个文件。流水线失败时不写任何输出。
func (r *Runner) ProcessSingleFile(ctx context.Context, inputFile, outputFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.logger.Info("处理文件", zap.String("input", inputFile), zap.String("output", outputFile))

	var (
		rep  *report.Report
		text string
		err  error
	)
	if strings.ToLower(filepath.Ext(inputFile)) == ".docx" {
		rep, text, err = r.processDocx(inputFile, outputFile)
	} else {
		rep, text, err = r.processText(inputFile, outputFile)
	}
	if err != nil {
		return fmt.Errorf("处理文件失败 %s: %w", inputFile, err)
	}

	fmt.Fprintf(r.out, "== %s\n", inputFile)
	if err := report.WriteText(r.out, rep, r.verbose); err != nil {
		return fmt.Errorf("输出报告失败: %w", err)
	}
	if r.writeReport && !r.dryRun {
		if err := writeJSONReport(outputFile+reportSuffix, rep); err != nil {
			return err
		}
	}
	r.logLeftoverHonorifics(inputFile, text)

	if r.dryRun {
		r.logger.Info("预演模式，未写入文件", zap.String("input", inputFile))
	} else {
		r.logger.Info("文件处理完成", zap.String("output", outputFile))
	}
	return nil
}

func (r *Runner) processText(inputFile, outputFile string) (*report.Report, string, error) {
	text, err := textio.ReadFile(inputFile, r.encoding)
	if err != nil {
		return nil, "", err
	}

	result, rep, err := r.processor.Replace(text, r.rules)
	if err != nil {
		return nil, "", err
	}

	if !r.dryRun {
		if err := textio.WriteFile(outputFile, result, r.encoding); err != nil {
			return nil, "", err
		}
	}
	return rep, result, nil
}

func (r *Runner) processDocx(inputFile, outputFile string) (*report.Report, string, error) {
	doc, err := docx.OpenDocument(inputFile)
	if err != nil {
		return nil, "", err
	}
	defer doc.Close()

	buf := docx.NewTextBuffer(doc.Content())
	rep, err := r.processor.Run(buf, r.rules)
	if err != nil {
		return nil, "", err
	}
	doc.SetContent(buf.String())
	if !doc.IsModified() {
		r.logger.Debug("文档中没有发生替换", zap.String("input", doc.FilePath()))
	}
	r.logSplitPatterns(inputFile, buf)

	if !r.dryRun {
		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return nil, "", fmt.Errorf("创建输出目录失败: %w", err)
		}
		if err := doc.SaveDocument(outputFile); err != nil {
			return nil, "", err
		}
	}
	return rep, buf.Text(), nil
}

// logLeftoverHonorifics 统计替换后仍残留的敬称，用于发现规则文件里漏掉的名字
func (r *Runner) logLeftoverHonorifics(inputFile, text string) {
	if len(r.rules.Honorifics) == 0 {
		return
	}
	suffixes := make([]string, 0, len(r.rules.Honorifics))
	for _, h := range r.rules.Honorifics {
		suffixes = append(suffixes, h.Suffix)
	}

	stats := matcher.GetMatchStats(text, suffixes)
	for _, suffix := range suffixes {
		if n := stats[suffix]; n > 0 {
			r.logger.Debug("文本中仍有未处理的敬称",
				zap.String("input", inputFile),
				zap.String("suffix", suffix),
				zap.Int("count", n))
		}
	}
}

// logSplitPatterns 提示被 Word 拆分到多个文本节点而未被替换的原文
func (r *Runner) logSplitPatterns(inputFile string, buf *docx.TextBuffer) {
	patterns := rulePatterns(r.rules)
	split := buf.SplitCounts(patterns)
	for _, p := range patterns {
		if n := split[p]; n > 0 {
			r.logger.Warn("原文被拆分到多个文本节点，未能替换",
				zap.String("input", inputFile),
				zap.String("pattern", p),
				zap.Int("count", n))
		}
	}
}

// rulePatterns 规则中的全部原文：字面键与名字片段，按类别顺序去重
func rulePatterns(rules *domain.RuleSet) []string {
	seen := make(map[string]bool)
	var patterns []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}
	for _, c := range domain.DefaultCategories() {
		for _, pair := range rules.Literals[c.Key] {
			add(pair.Key)
		}
		for _, e := range rules.Names[c.Key] {
			for _, src := range e.Source {
				for _, fragment := range strings.Split(src, domain.FragmentSeparator) {
					add(fragment)
				}
			}
		}
	}
	return patterns
}

func writeJSONReport(path string, rep *report.Report) error {
	data, err := report.MarshalJSON(rep)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return nil
}

// ProcessBatchFiles 批量处理目录下的 .txt 与 .docx 文件，保持目录结构
func (r *Runner) ProcessBatchFiles(ctx context.Context, inputDir, outputDir string) error {
	files, err := FindInputFiles(inputDir)
	if err != nil {
		return fmt.Errorf("查找输入文件失败: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("在目录 %s 中没有找到可处理的文件", inputDir)
	}

	r.logger.Info("找到待处理文件", zap.Int("count", len(files)))

	failed := 0
	for i, inputFile := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(inputDir, inputFile)
		if err != nil {
			return fmt.Errorf("计算相对路径失败: %w", err)
		}
		outputFile := filepath.Join(outputDir, relPath)

		r.logger.Debug("批量处理进度", zap.Int("index", i+1), zap.Int("count", len(files)))
		if err := r.ProcessSingleFile(ctx, inputFile, outputFile); err != nil {
			r.logger.Error("处理文件失败", zap.String("input", inputFile), zap.Error(err))
			failed++
			continue
		}
	}

	r.logger.Info("批量处理完成", zap.Int("count", len(files)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("批量处理有 %d 个文件失败", failed)
	}
	return nil
}

// FindInputFiles 查找目录中的所有可处理文件
func FindInputFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			// 排除临时文件
			filename := filepath.Base(path)
			if !strings.HasPrefix(filename, "~$") {
				files = append(files, path)
			}
		}

		return nil
	})

	return files, err
}

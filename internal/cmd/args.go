package cmd

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/allanpk716/name_replacer/internal/config"
)

const (
	AppName    = "name-replacer"
	AppVersion = "1.0.0"
)

// outputSuffix 输出文件名后缀，如 chapter1.txt -> chapter1-rep.txt
const outputSuffix = "-rep"

// CommandLineArgs 命令行参数结构
type CommandLineArgs struct {
	ConfigFile         string
	InputFile          string
	OutputFile         string
	InputDir           string
	OutputDir          string
	Encoding           string
	Separators         string
	NoSingleCharFilter bool
	WriteReport        bool
	DryRun             bool
	LogLevel           string
	LogFormat          string
	ShowVersion        bool
	ShowHelp           bool
	Verbose            bool
}

// ParseCommandLineArgs 解析命令行参数。
// 兼容位置参数写法: name-replacer <输入文件> <规则文件>，选项可以出现在位置参数前后。
func ParseCommandLineArgs(argv []string, stderr io.Writer) (*CommandLineArgs, error) {
	args := &CommandLineArgs{}

	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { ShowUsage(stderr) }

	fs.StringVar(&args.ConfigFile, "config", "replacements.json", "规则文件路径 (JSON 或 YAML)")
	fs.StringVar(&args.InputFile, "input", "", "输入文件路径 (.txt 或 .docx)")
	fs.StringVar(&args.OutputFile, "output", "", "输出文件路径")
	fs.StringVar(&args.InputDir, "input-dir", "", "输入目录路径（批量处理）")
	fs.StringVar(&args.OutputDir, "output-dir", "", "输出目录路径（批量处理）")
	fs.StringVar(&args.Encoding, "encoding", "utf-8", "文本文件编码: utf-8 | shift_jis | euc-jp | iso-2022-jp")
	fs.StringVar(&args.Separators, "separators", "・,", "名字片段分隔符，逗号分隔，空项表示无分隔")
	fs.BoolVar(&args.NoSingleCharFilter, "no-single-char-filter", false, "允许单字符名字不带敬称替换")
	fs.BoolVar(&args.WriteReport, "report", false, "在输出文件旁写入 JSON 报告")
	fs.BoolVar(&args.DryRun, "dry-run", false, "只输出报告，不写入文件")
	fs.StringVar(&args.LogLevel, "log-level", "", "日志级别: debug | info | warn | error (默认读取 LOG_LEVEL)")
	fs.StringVar(&args.LogFormat, "log-format", "console", "日志格式: console | json")
	fs.BoolVar(&args.ShowVersion, "version", false, "显示版本信息")
	fs.BoolVar(&args.ShowHelp, "help", false, "显示帮助信息")
	fs.BoolVar(&args.Verbose, "verbose", false, "详细输出")

	// flag 在第一个位置参数处停止解析，逐个取出位置参数后继续解析其后的选项
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	var rest []string
	for fs.NArg() > 0 {
		rest = append(rest, fs.Arg(0))
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return nil, err
		}
	}

	switch len(rest) {
	case 0:
	case 2:
		if args.InputFile != "" || args.InputDir != "" {
			return nil, fmt.Errorf("位置参数不能与 -input/-input-dir 同时使用")
		}
		args.InputFile = rest[0]
		args.ConfigFile = rest[1]
	default:
		return nil, fmt.Errorf("位置参数必须是 <输入文件> <规则文件>，当前: %v", rest)
	}

	return args, nil
}

// ValidateArgs 验证命令行参数
func ValidateArgs(args *CommandLineArgs) error {
	if args.ConfigFile == "" {
		return fmt.Errorf("规则文件路径不能为空")
	}

	// 检查是单文件处理还是批量处理
	hasSingleFile := args.InputFile != "" || args.OutputFile != ""
	hasBatchMode := args.InputDir != "" || args.OutputDir != ""

	if !hasSingleFile && !hasBatchMode {
		return fmt.Errorf("必须指定输入文件或输入目录")
	}

	if hasSingleFile && hasBatchMode {
		return fmt.Errorf("不能同时指定单文件和批量处理模式")
	}

	if hasSingleFile {
		if args.InputFile == "" {
			return fmt.Errorf("单文件模式下必须指定输入文件")
		}
		if args.OutputFile == "" {
			args.OutputFile = GenerateOutputFileName(args.InputFile)
		}
		if filepath.Clean(args.OutputFile) == filepath.Clean(args.InputFile) {
			return fmt.Errorf("输出文件不能覆盖输入文件")
		}
	}

	if hasBatchMode {
		if args.InputDir == "" {
			return fmt.Errorf("批量模式下必须指定输入目录")
		}
		if args.OutputDir == "" {
			args.OutputDir = strings.TrimRight(args.InputDir, `/\`) + outputSuffix
		}
		if filepath.Clean(args.OutputDir) == filepath.Clean(args.InputDir) {
			return fmt.Errorf("输出目录不能与输入目录相同")
		}
	}

	return nil
}

// GenerateOutputFileName 生成输出文件名
func GenerateOutputFileName(inputFile string) string {
	ext := filepath.Ext(inputFile)
	base := strings.TrimSuffix(inputFile, ext)
	return base + outputSuffix + ext
}

// Options 由命令行参数得到流水线选项
func (args *CommandLineArgs) Options() config.Options {
	opts := config.DefaultOptions()
	opts.Separators = config.ParseSeparators(args.Separators)
	opts.SingleCharFilter = !args.NoSingleCharFilter
	return opts
}

// ShowUsage 输出帮助信息
func ShowUsage(w io.Writer) {
	fmt.Fprintf(w, `%s v%s - 日文文本词汇与人名预处理工具

用法:
  %s -config <规则文件> -input <输入文件> [-output <输出文件>]
  %s -config <规则文件> -input-dir <输入目录> [-output-dir <输出目录>]
  %s <输入文件> <规则文件>

选项:
  -config <path>           规则文件 (JSON 或 YAML，默认 replacements.json)
  -input <path>            输入文件 (.txt 或 .docx)
  -output <path>           输出文件 (默认 <文件名>-rep.<扩展名>)
  -input-dir <path>        输入目录（批量处理 .txt 与 .docx）
  -output-dir <path>       输出目录 (默认 <输入目录>-rep)
  -encoding <name>         文本编码: utf-8 | shift_jis | euc-jp | iso-2022-jp
  -separators <list>       名字片段分隔符，逗号分隔 (默认 "・,")
  -no-single-char-filter   允许单字符名字不带敬称替换
  -report                  在输出文件旁写入 <输出文件>.report.json
  -dry-run                 只输出报告，不写入文件
  -log-level <level>       debug | info | warn | error
  -log-format <format>     console | json
  -verbose                 输出每条替换明细
  -version                 显示版本信息
  -help                    显示帮助信息
`, AppName, AppVersion, AppName, AppName, AppName)
}

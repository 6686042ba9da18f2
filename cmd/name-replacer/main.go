package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/allanpk716/name_replacer/internal/cmd"
	"github.com/allanpk716/name_replacer/internal/config"
	"github.com/allanpk716/name_replacer/internal/logging"
	"github.com/allanpk716/name_replacer/internal/processor"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 解析命令行参数
	args, err := cmd.ParseCommandLineArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "参数解析失败: %v\n", err)
		return 2
	}

	// 处理版本和帮助信息
	if args.ShowVersion {
		fmt.Printf("%s v%s\n", cmd.AppName, cmd.AppVersion)
		return 0
	}

	if args.ShowHelp {
		cmd.ShowUsage(os.Stdout)
		return 0
	}

	level := args.LogLevel
	if args.Verbose && level == "" {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, logging.Format(args.LogFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("启动", zap.String("app", cmd.AppName), zap.String("version", cmd.AppVersion))

	// 验证参数
	if err := cmd.ValidateArgs(args); err != nil {
		logger.Error("参数验证失败", zap.Error(err))
		return 2
	}

	// 加载规则文件
	rules, err := config.NewRuleManager(logger).LoadRules(args.ConfigFile)
	if err != nil {
		logger.Error("加载规则文件失败", zap.String("path", args.ConfigFile), zap.Error(err))
		return 1
	}

	p := processor.NewProcessor(args.Options(), logger)
	runner, err := cmd.NewRunner(p, rules, args, os.Stdout, logger)
	if err != nil {
		logger.Error("参数验证失败", zap.Error(err))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteProcessing(ctx, runner, args); err != nil {
		logger.Error("处理失败", zap.Error(err))
		return 1
	}

	logger.Info("处理完成")
	return 0
}

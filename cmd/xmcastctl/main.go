// xmcastctl 是 IPv4 多播地址的命令行工具。
//
// 用法:
//
//	xmcastctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-o, --output      输出格式 text|json|yaml (默认: text)
//	    --log-level   日志级别 debug|info|warn|error (默认: warn)
//	    --log-format  日志格式 text|json (默认: text)
//	    --log-file    日志文件路径，设置后按大小轮转
//
// 命令:
//
//	validate <addr>...         校验地址或 URI
//	show <addr>                显示解析结果与作用域
//	next <addr> [-n N]         向后步进 N 个地址
//	prev <addr> [-n N]         向前步进 N 个地址
//	random [-n N]              生成随机多播地址
//	range <from> <to>          列出区间内的地址或 CIDR
//	plan <file> [--watch]      加载频道规划并分配地址
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（validate: 存在无效输入）
//	2: 参数错误（缺少参数、未知 flag、未知命令等）
//
// 示例:
//
//	xmcastctl validate udp://239.0.0.1:5000 http://225.0.0.1
//	xmcastctl show 224.0.1.19
//	xmcastctl next -n 3 udp://239.0.0.255:5000
//	xmcastctl range --cidr 239.1.0.0 239.1.1.255
//	xmcastctl -o yaml plan channels.yaml
//	xmcastctl plan --watch channels.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandler(cancel)

	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	s := &session{}
	return &cli.Command{
		Name:    "xmcastctl",
		Usage:   "IPv4 多播地址校验、步进与规划工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "输出格式 text|json|yaml",
				Value:   formatText,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 debug|info|warn|error",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 text|json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径（按大小轮转），为空时写 stderr",
			},
		},
		Before:         s.setup,
		After:          s.close,
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
	}
}

// run 执行应用并返回退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp()
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			// flag 解析器或 ExitErrHandler 已输出详情
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// cliUsageMarkers 是 urfave/cli 与 flag 包参数错误消息中的固定片段。
var cliUsageMarkers = []string{
	"flag provided but not defined",
	"flag needs an argument",
	"invalid value",
	"No help topic for",
	"Required flag",
}

// isCLIUsageError 判断错误是否来自 CLI 框架的参数解析。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, m := range cliUsageMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Package clilog 为命令行工具构建 [*slog.Logger]。
//
// 支持 text / json 两种格式；设置 [Builder.SetRotation] 后
// 日志写入由 lumberjack 按大小轮转的文件。
package clilog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值。
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// ParseLevel 解析字符串为日志级别。
// 支持 debug/info/warn/warning/error（大小写不敏感），输入会先 TrimSpace。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("clilog: unknown level %q", s)
	}
}

// Builder 日志配置构建器。
type Builder struct {
	output io.Writer
	level  slog.Level
	format string
	rotate *lumberjack.Logger
	err    error
}

// New 创建构建器，默认 info 级别、text 格式、输出到 stderr。
func New() *Builder {
	return &Builder{
		output: os.Stderr,
		level:  slog.LevelInfo,
		format: "text",
	}
}

// SetOutput 设置日志输出目标。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别。
func (b *Builder) SetLevel(level slog.Level) *Builder {
	b.level = level
	return b
}

// SetLevelString 通过字符串设置日志级别。
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json，空值使用 text。
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		b.format = "text"
		return b
	}
	if normalized != "text" && normalized != "json" {
		b.err = fmt.Errorf("clilog: unknown format %q", format)
		return b
	}
	b.format = normalized
	return b
}

// SetRotation 把日志写入 filename 并按大小轮转。
// filename 为空时视为不写文件。
func (b *Builder) SetRotation(filename string) *Builder {
	if filename == "" {
		return b
	}
	clean := filepath.Clean(filename)
	if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
		b.err = fmt.Errorf("clilog: create log directory: %w", err)
		return b
	}
	b.rotate = &lumberjack.Logger{
		Filename:   clean,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}
	b.output = b.rotate
	return b
}

// Build 构建 Logger。
//
// 返回值：
//   - *slog.Logger: 日志实例
//   - func() error: 清理函数，关闭轮转文件；可重复调用
//   - error: 配置错误
func (b *Builder) Build() (*slog.Logger, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{Level: b.level}
	var handler slog.Handler
	switch b.format {
	case "json":
		handler = slog.NewJSONHandler(b.output, opts)
	default:
		handler = slog.NewTextHandler(b.output, opts)
	}

	var once sync.Once
	rotate := b.rotate
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotate != nil {
				err = rotate.Close()
			}
		})
		return err
	}
	return slog.New(handler), cleanup, nil
}

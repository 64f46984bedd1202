package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xmcast/internal/clilog"
)

// session 保存一次命令执行期间共享的日志器。
type session struct {
	logger  *slog.Logger
	cleanup func() error
}

type sessionKey struct{}

// setup 根据全局 flag 构建日志器并放入 context。
func (s *session) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if _, err := outputFormat(cmd); err != nil {
		return ctx, err
	}
	logger, cleanup, err := clilog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format")).
		SetRotation(cmd.String("log-file")).
		Build()
	if err != nil {
		return ctx, &usageError{msg: err.Error()}
	}
	s.logger = logger
	s.cleanup = cleanup
	return context.WithValue(ctx, sessionKey{}, s), nil
}

// close 关闭日志文件。
func (s *session) close(context.Context, *cli.Command) error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

// loggerFrom 返回 context 中的日志器，未设置时丢弃所有日志。
func loggerFrom(ctx context.Context) *slog.Logger {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok && s.logger != nil {
		return s.logger
	}
	return slog.New(slog.DiscardHandler)
}

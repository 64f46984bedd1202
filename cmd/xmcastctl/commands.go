package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xmcast/internal/plan"
	"github.com/omeyang/xmcast/pkg/util/xmcast"
)

// exitError 表示需要非零退出码但已完成输出的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示命令参数错误，退出码为 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// defaultRangeLimit 是 range 命令默认最多列出的地址数。
const defaultRangeLimit = 256

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createValidateCommand(),
		createShowCommand(),
		createStepCommand("next", "向后步进地址（进位）", true),
		createStepCommand("prev", "向前步进地址（借位）", false),
		createRandomCommand(),
		createRangeCommand(),
		createPlanCommand(),
	}
}

// createValidateCommand 创建 validate 子命令。
func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "校验多播地址或 URI，存在无效输入时退出码为 1",
		ArgsUsage: "<addr>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdValidate(ctx, cmd, cmd.Args().Slice())
		},
	}
}

// createShowCommand 创建 show 子命令。
func createShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "显示解析结果、作用域和 local/global 判断",
		ArgsUsage: "<addr>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "show 命令需要且只需要一个地址"}
			}
			return cmdShow(ctx, cmd, cmd.Args().First())
		},
	}
}

// createStepCommand 创建 next / prev 子命令。
func createStepCommand(name, usage string, forward bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<addr>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "步进次数",
				Value:   1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: fmt.Sprintf("%s 命令需要且只需要一个地址", name)}
			}
			n := cmd.Int("count")
			if n <= 0 {
				return &usageError{msg: fmt.Sprintf("--count 必须为正数，当前为 %d", n)}
			}
			return cmdStep(ctx, cmd, cmd.Args().First(), n, forward)
		},
	}
}

// createRandomCommand 创建 random 子命令。
func createRandomCommand() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "生成随机多播地址（各分组独立取值）",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "生成数量",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "scheme",
				Usage: "附加的协议名（udp/rtp/rsvp/mdns）",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "附加的端口",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "随机种子，非零时输出可复现",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			n := cmd.Int("count")
			if n <= 0 {
				return &usageError{msg: fmt.Sprintf("--count 必须为正数，当前为 %d", n)}
			}
			port := cmd.Int("port")
			if port < 0 || port > 65535 {
				return &usageError{msg: fmt.Sprintf("--port 超出范围: %d", port)}
			}
			return cmdRandom(ctx, cmd, n, cmd.String("scheme"), port, cmd.Uint64("seed"))
		},
	}
}

// createRangeCommand 创建 range 子命令。
func createRangeCommand() *cli.Command {
	return &cli.Command{
		Name:      "range",
		Usage:     "列出区间内的地址，或用 --cidr 输出最少的 CIDR 前缀",
		ArgsUsage: "<from> <to>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "最多列出的地址数",
				Value: defaultRangeLimit,
			},
			&cli.BoolFlag{
				Name:  "cidr",
				Usage: "输出 CIDR 前缀而不是逐个地址",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return &usageError{msg: "range 命令需要起止两个地址"}
			}
			limit := cmd.Int("limit")
			if limit <= 0 {
				return &usageError{msg: fmt.Sprintf("--limit 必须为正数，当前为 %d", limit)}
			}
			return cmdRange(ctx, cmd, cmd.Args().Get(0), cmd.Args().Get(1), limit, cmd.Bool("cidr"))
		},
	}
}

// createPlanCommand 创建 plan 子命令。
func createPlanCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "加载频道规划（yaml/json）并分配组地址",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "监视规划文件，变化时重新分配并输出",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "plan 命令需要且只需要一个规划文件"}
			}
			return cmdPlan(ctx, cmd, cmd.Args().First(), cmd.Bool("watch"))
		},
	}
}

// checkView 是一条校验结果。
type checkView struct {
	Input string `json:"input" yaml:"input"`
	Valid bool   `json:"valid" yaml:"valid"`
	URI   string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// cmdValidate 逐个校验输入。
func cmdValidate(ctx context.Context, cmd *cli.Command, inputs []string) error {
	if len(inputs) == 0 {
		return &usageError{msg: "validate 命令需要至少一个地址"}
	}
	logger := loggerFrom(ctx)

	views := make([]checkView, len(inputs))
	invalid := 0
	for i, s := range inputs {
		r := xmcast.Check(s)
		views[i] = checkView{Input: s, Valid: r.OK()}
		if r.OK() {
			views[i].URI = r.URI.String()
		} else {
			views[i].Error = r.Err.Error()
			invalid++
		}
		logger.Debug("checked", slog.String("input", s), slog.Bool("valid", r.OK()))
	}

	err := render(cmd, views, func(w io.Writer) error {
		for _, v := range views {
			if v.Valid {
				fmt.Fprintf(w, "%s\tvalid\n", v.Input)
			} else {
				fmt.Fprintf(w, "%s\tinvalid\t%s\n", v.Input, v.Error)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if invalid > 0 {
		logger.Info("validation failed", slog.Int("invalid", invalid), slog.Int("total", len(inputs)))
		return &exitError{code: 1}
	}
	return nil
}

// showView 是 show 命令的输出。
type showView struct {
	URI      string `json:"uri" yaml:"uri"`
	IP       string `json:"ip" yaml:"ip"`
	Scheme   string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Query    string `json:"query,omitempty" yaml:"query,omitempty"`
	Scope    string `json:"scope" yaml:"scope"`
	Local    bool   `json:"local" yaml:"local"`
	Global   bool   `json:"global" yaml:"global"`
	Reserved bool   `json:"reserved" yaml:"reserved"`
}

// cmdShow 显示单个地址的解析结果。
func cmdShow(_ context.Context, cmd *cli.Command, input string) error {
	u, err := xmcast.Create(input)
	if err != nil {
		return err
	}
	a := u.Addr()
	v := showView{
		URI:      u.String(),
		IP:       a.String(),
		Scheme:   u.Scheme(),
		Port:     u.Port(),
		Query:    u.Query(),
		Scope:    a.Scope().String(),
		Local:    a.IsLocal(),
		Global:   a.IsGlobal(),
		Reserved: a.IsReserved(),
	}
	return render(cmd, v, func(w io.Writer) error {
		fmt.Fprintf(w, "uri:      %s\n", v.URI)
		fmt.Fprintf(w, "ip:       %s\n", v.IP)
		if v.Scheme != "" {
			fmt.Fprintf(w, "scheme:   %s\n", v.Scheme)
		}
		if v.Port > 0 {
			fmt.Fprintf(w, "port:     %d\n", v.Port)
		}
		if v.Query != "" {
			fmt.Fprintf(w, "query:    %s\n", v.Query)
		}
		fmt.Fprintf(w, "scope:    %s\n", v.Scope)
		fmt.Fprintf(w, "local:    %t\n", v.Local)
		fmt.Fprintf(w, "global:   %t\n", v.Global)
		fmt.Fprintf(w, "reserved: %t\n", v.Reserved)
		return nil
	})
}

// cmdStep 从 input 开始步进 n 次，输出每一步的结果。
// 到达边界时先输出已得到的结果，再以 ErrRangeExhausted 失败。
func cmdStep(ctx context.Context, cmd *cli.Command, input string, n int, forward bool) error {
	u, err := xmcast.Create(input)
	if err != nil {
		return err
	}

	out := make([]string, 0, n)
	var stepErr error
	for range n {
		if forward {
			_, stepErr = u.Add()
		} else {
			_, stepErr = u.Sub()
		}
		if stepErr != nil {
			loggerFrom(ctx).Warn("range exhausted", slog.String("at", u.String()), slog.Int("steps", len(out)))
			break
		}
		out = append(out, u.String())
	}

	if err := render(cmd, out, lines(out)); err != nil {
		return err
	}
	return stepErr
}

// cmdRandom 生成 n 个随机 URI。
func cmdRandom(_ context.Context, cmd *cli.Command, n int, scheme string, port int, seed uint64) error {
	random := xmcast.Random
	if seed != 0 {
		r := rand.New(rand.NewPCG(seed, seed))
		random = func() *xmcast.URI { return xmcast.RandomWith(r) }
	}

	out := make([]string, n)
	for i := range n {
		u := random()
		if err := u.SetScheme(scheme); err != nil {
			return &usageError{msg: err.Error()}
		}
		u.SetPort(port)
		out[i] = u.String()
	}
	return render(cmd, out, lines(out))
}

// cmdRange 列出 from-to 区间。
func cmdRange(ctx context.Context, cmd *cli.Command, fromStr, toStr string, limit int, cidr bool) error {
	from, err := parseValidAddr(fromStr)
	if err != nil {
		return err
	}
	to, err := parseValidAddr(toStr)
	if err != nil {
		return err
	}
	if from.Compare(to) > 0 {
		return &usageError{msg: fmt.Sprintf("起始地址 %s 大于结束地址 %s", from, to)}
	}

	if cidr {
		prefixes := xmcast.Prefixes(from, to)
		out := make([]string, len(prefixes))
		for i, p := range prefixes {
			out[i] = p.String()
		}
		return render(cmd, out, lines(out))
	}

	total := xmcast.RangeCount(from, to)
	if total > uint64(limit) {
		loggerFrom(ctx).Warn("range truncated", slog.Uint64("total", total), slog.Int("limit", limit))
	}
	out := make([]string, 0, min(total, uint64(limit)))
	for a := range xmcast.RangeN(from, limit) {
		if a.Compare(to) > 0 {
			break
		}
		out = append(out, a.String())
	}
	return render(cmd, out, lines(out))
}

// parseValidAddr 解析 URI 或裸地址并返回其中的多播地址。
func parseValidAddr(s string) (xmcast.Addr, error) {
	u, err := xmcast.Create(s)
	if err != nil {
		return xmcast.Addr{}, err
	}
	return u.Addr(), nil
}

// cmdPlan 加载规划并输出分配结果；watch 时持续监视直到 ctx 取消。
func cmdPlan(ctx context.Context, cmd *cli.Command, path string, watch bool) error {
	logger := loggerFrom(ctx)

	p, err := plan.Load(path)
	if err != nil {
		return err
	}
	logger.Info("plan loaded",
		slog.String("path", path),
		slog.Int("channels", len(p.Channels)),
		slog.Int("total", p.Total()),
	)
	if err := printPlan(cmd, p); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchPlan(ctx, cmd, path, p)
}

// watchPlan 在 errgroup 中同时运行文件监视和输出循环。
func watchPlan(ctx context.Context, cmd *cli.Command, path string, current *plan.Plan) error {
	logger := loggerFrom(ctx)
	g, gctx := errgroup.WithContext(ctx)
	updates := make(chan *plan.Plan)

	w, err := plan.Watch(path, current, func(p *plan.Plan, err error) {
		if err != nil {
			logger.Warn("plan reload failed", slog.String("path", path), slog.Any("error", err))
			return
		}
		select {
		case updates <- p:
		case <-gctx.Done():
		}
	})
	if err != nil {
		return err
	}

	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case p := <-updates:
				logger.Info("plan reloaded", slog.String("path", path), slog.Int("total", p.Total()))
				// 重新加载后的分配失败与加载失败同等处理，继续等待下一次变更
				if err := printPlan(cmd, p); err != nil {
					logger.Warn("plan allocation failed", slog.String("path", path), slog.Any("error", err))
				}
			}
		}
	})
	return g.Wait()
}

// printPlan 分配并输出规划。
func printPlan(cmd *cli.Command, p *plan.Plan) error {
	allocs, err := plan.Allocate(p)
	if err != nil {
		return err
	}
	return render(cmd, allocs, func(w io.Writer) error {
		for _, a := range allocs {
			fmt.Fprintf(w, "%s\t%d\t%s\n", a.Channel, a.Index, a.URI)
		}
		return nil
	})
}

// lines 返回逐行输出 items 的 text 渲染函数。
func lines(items []string) func(io.Writer) error {
	return func(w io.Writer) error {
		for _, s := range items {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
		return nil
	}
}

// setupSignalHandler 设置信号处理。
// 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}

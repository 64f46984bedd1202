package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// WatchCallback 规划文件变更回调。
// 重新加载成功时 p 非 nil；失败时 err 非 nil，调用方继续使用旧规划。
type WatchCallback func(p *Plan, err error)

// WatchOption 监视器配置选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

func defaultWatchOptions() *watchOptions {
	return &watchOptions{
		debounce: 100 * time.Millisecond,
	}
}

// WithDebounce 设置防抖时间，在该时间内的多次变更只触发一次重载。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 监视规划文件，内容变化时重新加载并回调。
// 内容摘要（[Plan.Sum]）不变的写入不会触发回调。
type Watcher struct {
	path     string
	format   Format
	callback WatchCallback
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	lastSum uint64
	timer   *time.Timer
	closed  bool
}

// Watch 创建规划文件监视器。current 是当前已加载的规划，可以为 nil。
//
// 监视的是文件所在目录而不是文件本身，
// 编辑器先删除再创建或写临时文件后 rename 的保存方式也能被捕获。
//
//	w, err := plan.Watch(path, p, func(p *plan.Plan, err error) { ... })
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx)
func Watch(path string, current *Plan, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	options := defaultWatchOptions()
	for _, opt := range opts {
		opt(options)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("plan: failed to create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(
			fmt.Errorf("plan: failed to watch directory %s: %w", dir, err),
			closeErr,
		)
	}

	w := &Watcher{
		path:     path,
		format:   format,
		callback: callback,
		debounce: options.debounce,
		watcher:  fsWatcher,
	}
	if current != nil {
		w.lastSum = current.Sum()
	}
	return w, nil
}

// Run 运行监视循环，阻塞直到 ctx 取消或底层 watcher 关闭。
// 返回前关闭 watcher 并取消尚未触发的重载；ctx 取消时返回 nil。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	filename := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.callback != nil {
				w.callback(nil, fmt.Errorf("plan: watch error: %w", err))
			}
		}
	}
}

// stop 关闭 watcher 并停止防抖定时器。
func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
}

// handleEvent 处理文件系统事件。
func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload 读取文件，内容变化时重新加载并回调。
func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// rename 保存过程中文件可能短暂不存在，等待下一个事件。
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		w.notify(nil, fmt.Errorf("%w: %w", ErrLoadFailed, err))
		return
	}

	sum := xxhash.Sum64(data)
	w.mu.Lock()
	if w.closed || sum == w.lastSum {
		w.mu.Unlock()
		return
	}
	w.lastSum = sum
	w.mu.Unlock()

	w.notify(LoadBytes(data, w.format))
}

func (w *Watcher) notify(p *Plan, err error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed || w.callback == nil {
		return
	}
	w.callback(p, err)
}

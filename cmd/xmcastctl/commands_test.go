package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// syncBuffer 是并发安全的 bytes.Buffer，用于 watch 模式下读取输出。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), append([]string{"xmcastctl"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExitError(t *testing.T) {
	err := &exitError{code: 2}
	assert.Equal(t, "exit status 2", err.Error())

	var target *exitError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 2, target.code)
}

func TestIsCLIUsageError(t *testing.T) {
	assert.True(t, isCLIUsageError(errors.New("flag provided but not defined: -x")))
	assert.True(t, isCLIUsageError(errors.New(`invalid value "a" for flag -n`)))
	assert.False(t, isCLIUsageError(errors.New("xmcast: address out of multicast range")))
}

func TestValidate(t *testing.T) {
	code, out, _ := runCLI(t, "validate", "udp://225.0.0.1:12345", "239.0.0.19")
	assert.Equal(t, 0, code)
	assert.Equal(t, "udp://225.0.0.1:12345\tvalid\n239.0.0.19\tvalid\n", out)

	code, out, _ = runCLI(t, "validate", "udp://225.0.0.1:12345", "http://225.0.0.1:12345")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "http://225.0.0.1:12345\tinvalid\txmcast: invalid protocol [http]")
}

func TestValidate_JSON(t *testing.T) {
	code, out, _ := runCLI(t, "-o", "json", "validate",
		"udp://225.0.0.1:12345",
		"udp://240.0.0.1:12345",
		"udp://localhost:1234",
		"udp://225.0.0.1:12345r",
	)
	assert.Equal(t, 1, code)

	var views []checkView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 4)
	assert.True(t, views[0].Valid)
	assert.Equal(t, "udp://225.0.0.1:12345", views[0].URI)
	for _, v := range views[1:] {
		assert.False(t, v.Valid, v.Input)
		assert.NotEmpty(t, v.Error, v.Input)
	}
	assert.Contains(t, views[1].Error, "invalid range 240 in group 0")
}

func TestValidate_NoArgs(t *testing.T) {
	code, _, errOut := runCLI(t, "validate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "参数错误")
}

func TestShow(t *testing.T) {
	code, out, _ := runCLI(t, "show", "udp://224.0.1.19:5000?k=v")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "scope:    global\n")
	assert.Contains(t, out, "global:   true\n")
	assert.Contains(t, out, "local:    false\n")
	assert.Contains(t, out, "port:     5000\n")
	assert.Contains(t, out, "query:    k=v\n")
}

func TestShow_YAML(t *testing.T) {
	code, out, _ := runCLI(t, "--output", "yaml", "show", "224.0.0.19")
	require.Equal(t, 0, code)

	var v showView
	require.NoError(t, yaml.Unmarshal([]byte(out), &v))
	assert.Equal(t, "reserved", v.Scope)
	assert.True(t, v.Reserved)
	assert.False(t, v.Global)
	assert.False(t, v.Local)
	assert.Empty(t, v.Scheme)
}

func TestShow_Invalid(t *testing.T) {
	code, _, errOut := runCLI(t, "show", "udp://240.0.0.1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid range 240")

	code, _, _ = runCLI(t, "show")
	assert.Equal(t, 2, code)
}

func TestNextPrev(t *testing.T) {
	code, out, _ := runCLI(t, "next", "-n", "2", "udp://239.0.20.255:5000")
	require.Equal(t, 0, code)
	assert.Equal(t, "udp://239.0.21.0:5000\nudp://239.0.21.1:5000\n", out)

	code, out, _ = runCLI(t, "prev", "225.0.0.0")
	require.Equal(t, 0, code)
	assert.Equal(t, "224.255.255.255\n", out)
}

func TestNextPrev_Exhausted(t *testing.T) {
	code, out, errOut := runCLI(t, "next", "-n", "3", "239.255.255.254")
	assert.Equal(t, 1, code)
	assert.Equal(t, "239.255.255.255\n", out)
	assert.Contains(t, errOut, "range exhausted")

	code, out, _ = runCLI(t, "prev", "224.0.0.0")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)

	code, _, _ = runCLI(t, "next", "-n", "0", "239.0.0.1")
	assert.Equal(t, 2, code)
}

func TestRandom(t *testing.T) {
	code, out, _ := runCLI(t, "random", "-n", "5", "--scheme", "udp", "--port", "5000", "--seed", "42")
	require.Equal(t, 0, code)

	got := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, got, 5)
	for _, s := range got {
		assert.True(t, strings.HasPrefix(s, "udp://"), s)
		assert.True(t, strings.HasSuffix(s, ":5000"), s)
	}

	_, again, _ := runCLI(t, "random", "-n", "5", "--scheme", "udp", "--port", "5000", "--seed", "42")
	assert.Equal(t, out, again, "same seed must give same output")

	code, _, _ = runCLI(t, "random", "--scheme", "http")
	assert.Equal(t, 2, code)
}

func TestRange(t *testing.T) {
	code, out, _ := runCLI(t, "range", "239.0.0.254", "239.0.1.1")
	require.Equal(t, 0, code)
	assert.Equal(t, "239.0.0.254\n239.0.0.255\n239.0.1.0\n239.0.1.1\n", out)

	code, out, _ = runCLI(t, "range", "--limit", "2", "239.0.0.254", "239.0.1.1")
	require.Equal(t, 0, code)
	assert.Equal(t, "239.0.0.254\n239.0.0.255\n", out)

	code, out, _ = runCLI(t, "-o", "json", "range", "--cidr", "239.1.0.0", "239.1.1.255")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `["239.1.0.0/23"]`, out)

	code, _, _ = runCLI(t, "range", "239.0.0.2", "239.0.0.1")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "range", "239.0.0.1")
	assert.Equal(t, 2, code)
}

const cliPlan = `
base: udp://239.1.0.254:5000
channels:
  - name: video
    count: 2
  - name: audio
    count: 1
    port: 5004
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestPlan(t *testing.T) {
	path := writeFile(t, "plan.yaml", cliPlan)

	code, out, _ := runCLI(t, "plan", path)
	require.Equal(t, 0, code)
	assert.Equal(t,
		"video\t0\tudp://239.1.0.254:5000\n"+
			"video\t1\tudp://239.1.0.255:5000\n"+
			"audio\t0\tudp://239.1.1.0:5004\n", out)

	code, out, _ = runCLI(t, "-o", "json", "plan", path)
	require.Equal(t, 0, code)
	var allocs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &allocs))
	require.Len(t, allocs, 3)
	assert.Equal(t, "udp://239.1.1.0:5004", allocs[2]["uri"])
}

func TestPlan_Errors(t *testing.T) {
	code, _, errOut := runCLI(t, "plan", writeFile(t, "plan.yaml", "base: udp://239.0.0.1\n"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid plan")

	code, _, _ = runCLI(t, "plan", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "plan")
	assert.Equal(t, 2, code)
}

func TestPlan_Watch(t *testing.T) {
	path := writeFile(t, "plan.yaml", cliPlan)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"xmcastctl", "plan", "--watch", path}, &out, &errOut)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "audio\t0\tudp://239.1.1.0:5004")
	}, 2*time.Second, 20*time.Millisecond)
	// 等待监视循环启动
	time.Sleep(100 * time.Millisecond)

	updated := "base: rtp://239.9.0.0\nchannels:\n  - name: only\n    count: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0600))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "only\t0\trtp://239.9.0.0")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestPlan_WatchSurvivesAllocationFailure(t *testing.T) {
	path := writeFile(t, "plan.yaml", cliPlan)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"xmcastctl", "plan", "--watch", path}, &out, &errOut)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "audio\t0\tudp://239.1.1.0:5004")
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	// 规划本身合法，但分配到第二个地址时耗尽多播范围
	exhausting := "base: udp://239.255.255.255\nchannels:\n  - name: a\n    count: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(exhausting), 0600))

	require.Eventually(t, func() bool {
		return strings.Contains(errOut.String(), "plan allocation failed")
	}, 3*time.Second, 20*time.Millisecond)
	select {
	case code := <-done:
		t.Fatalf("watch exited with code %d after allocation failure", code)
	default:
	}

	updated := "base: rtp://239.9.0.0\nchannels:\n  - name: only\n    count: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0600))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "only\t0\trtp://239.9.0.0")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestGlobalFlagErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "-o", "xml", "validate", "239.0.0.1")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "未知输出格式")

	code, _, _ = runCLI(t, "--log-level", "loud", "validate", "239.0.0.1")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "validate", "--bogus", "239.0.0.1")
	assert.Equal(t, 2, code)
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "xmcastctl.log")
	code, _, _ := runCLI(t, "--log-level", "debug", "--log-format", "json", "--log-file", logPath,
		"validate", "239.0.0.1")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"checked"`)
	assert.Contains(t, string(data), `"input":"239.0.0.1"`)
}

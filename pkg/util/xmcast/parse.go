package xmcast

import (
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// Components 是 [Parse] 拆分出的结构化字段，尚未做范围或协议校验。
// 零值字段表示输入中不存在该部分。
type Components struct {
	// IP 是 URI 的 host 或裸 IPv4 字面量。
	IP string
	// Scheme 为小写协议名，裸 IP 时为空。
	Scheme string
	// Port 为 1-65535，未指定时为 0。
	Port int
	// Query 为原样保留的查询串（不含 '?'），不解析为键值对。
	Query string
}

// IsURI 报告输入是否为 URI 形式。
func (c Components) IsURI() bool {
	return c.Scheme != ""
}

// Parse 对输入做纯语法分类：
//   - URI: "scheme://host[:port][?query]"，scheme 仅含字母，端口为 1-65535
//   - 裸 IPv4 字面量: "D.D.D.D"
//
// 两者都不是时返回 [ErrInvalidSyntax]。
// 这里不检查多播范围和协议集合，"http://10.0.0.1" 与 "udp://localhost" 都能通过。
func Parse(s string) (Components, error) {
	if strings.Contains(s, "://") {
		return parseURI(s)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return Components{}, fmt.Errorf("%w: %q is neither a URI nor an IPv4 literal", ErrInvalidSyntax, s)
	}
	return Components{IP: s}, nil
}

// parseURI 使用 [url.Parse] 拆分 URI，并拒绝语法规则之外的部分
// （userinfo、path、fragment、空端口），单独的 "/" 也按 path 拒绝。
func parseURI(s string) (Components, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Components{}, fmt.Errorf("%w: %w", ErrInvalidSyntax, err)
	}
	if !isAlpha(u.Scheme) {
		return Components{}, fmt.Errorf("%w: scheme %q must be alphabetic", ErrInvalidSyntax, u.Scheme)
	}
	if u.Opaque != "" || u.User != nil || u.Fragment != "" || u.Path != "" {
		return Components{}, fmt.Errorf("%w: unexpected URI component in %q", ErrInvalidSyntax, s)
	}
	host := u.Hostname()
	if host == "" {
		return Components{}, fmt.Errorf("%w: missing host in %q", ErrInvalidSyntax, s)
	}
	if strings.HasSuffix(u.Host, ":") {
		return Components{}, fmt.Errorf("%w: empty port in %q", ErrInvalidSyntax, s)
	}

	c := Components{IP: host, Scheme: u.Scheme, Query: u.RawQuery}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Components{}, fmt.Errorf("%w: invalid port %q", ErrInvalidSyntax, p)
		}
		c.Port = port
	}
	return c, nil
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

package xmcast

import (
	"slices"
	"strconv"
	"strings"
)

// 支持的多播协议（scheme）。
const (
	SchemeUDP  = "udp"
	SchemeRTP  = "rtp"
	SchemeRSVP = "rsvp"
	SchemeMDNS = "mdns"
)

var protocols = []string{SchemeUDP, SchemeRTP, SchemeRSVP, SchemeMDNS}

// Protocols 返回支持的 scheme 列表的副本。
func Protocols() []string {
	return slices.Clone(protocols)
}

// IsSupportedProtocol 报告 scheme 是否在支持的协议集合内（大小写不敏感）。
// 空字符串表示未指定协议，返回 true。
func IsSupportedProtocol(scheme string) bool {
	return scheme == "" || slices.Contains(protocols, strings.ToLower(scheme))
}

// URI 是多播地址加可选的 scheme、端口和查询串。
//
// 不变式：scheme 为空或在 [Protocols] 内；地址满足多播范围。
// 通过 [Create] 或 [NewURI] 获得已校验的实例；零值 URI 的地址为 0.0.0.0，不满足不变式。
//
// *URI 不是并发安全的，跨 goroutine 共享前请使用 [URI.Clone]。
type URI struct {
	addr   Addr
	scheme string
	port   int
	query  string
}

// NewURI 以已有地址创建 URI，地址必须在多播范围内。
func NewURI(addr Addr) (*URI, error) {
	if err := ValidateRange(addr); err != nil {
		return nil, err
	}
	return &URI{addr: addr}, nil
}

// Addr 返回内嵌地址的副本。
func (u *URI) Addr() Addr { return u.addr }

// Scheme 返回协议名，未指定时为空。
func (u *URI) Scheme() string { return u.scheme }

// Port 返回端口，未指定时为 0。
func (u *URI) Port() int { return u.port }

// Query 返回原样保存的查询串，未指定时为空。
func (u *URI) Query() string { return u.query }

// SetIP 解析 ip 并替换内嵌地址，随后做范围校验。
// 失败时 u 保持不变。
func (u *URI) SetIP(ip string) error {
	a, err := ParseAddr(ip)
	if err != nil {
		return err
	}
	return u.SetAddr(a)
}

// SetAddr 替换内嵌地址并做范围校验。失败时 u 保持不变。
func (u *URI) SetAddr(a Addr) error {
	if err := ValidateRange(a); err != nil {
		return err
	}
	u.addr = a
	return nil
}

// SetScheme 设置协议名并做协议校验，空字符串清除协议。
// 协议名统一按小写保存。失败时 u 保持不变。
func (u *URI) SetScheme(scheme string) error {
	if err := ValidateProtocol(scheme); err != nil {
		return err
	}
	u.scheme = strings.ToLower(scheme)
	return nil
}

// SetPort 设置端口，不做校验；0 表示未指定。
func (u *URI) SetPort(port int) {
	u.port = port
}

// SetQuery 设置查询串，不做校验；空字符串表示未指定。
func (u *URI) SetQuery(query string) {
	u.query = query
}

// String 按 scheme、host、port、query 的固定顺序重建 "scheme://ip:port?query"，
// 缺失的部分连同分隔符一起省略。
func (u *URI) String() string {
	var b strings.Builder
	b.Grow(len(u.scheme) + 3 + 15 + 6 + 1 + len(u.query))
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteString("://")
	}
	var buf [15]byte
	b.Write(u.addr.appendTo(buf[:0]))
	if u.port > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.port))
	}
	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	return b.String()
}

// Add 将内嵌地址原地加一并返回 u 本身，便于在检查错误后继续链式调用。
// 失败时 u 保持不变。
//
//	if _, err := u.Add(); err != nil { ... }
func (u *URI) Add() (*URI, error) {
	if err := u.addr.Increment(); err != nil {
		return u, err
	}
	return u, nil
}

// Sub 将内嵌地址原地减一并返回 u 本身。
// 已是 224.0.0.0 时返回 [ErrRangeExhausted]，u 保持不变。
func (u *URI) Sub() (*URI, error) {
	if err := u.addr.Decrement(); err != nil {
		return u, err
	}
	return u, nil
}

// Next 返回地址加一后的新 URI，u 本身不变。
func (u *URI) Next() (*URI, error) {
	c := u.Clone()
	if _, err := c.Add(); err != nil {
		return nil, err
	}
	return c, nil
}

// Prev 返回地址减一后的新 URI，u 本身不变。
func (u *URI) Prev() (*URI, error) {
	c := u.Clone()
	if _, err := c.Sub(); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone 返回 u 的独立副本。
func (u *URI) Clone() *URI {
	c := *u
	return &c
}

// Equal 报告两个 URI 的各部分是否完全相同。
func (u *URI) Equal(o *URI) bool {
	if u == nil || o == nil {
		return u == o
	}
	return *u == *o
}

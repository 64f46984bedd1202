package xmcast

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Addr 表示 IPv4 多播地址的四个八位段 g1.g2.g3.g4。
//
// Addr 是值类型：
//   - 可直接比较（==）和用作 map key
//   - 解析后、校验前可以持有任意 0-255 的八位段（如 240.0.0.1）
//   - 通过 [Addr.Validate] 后满足 224.0.0.0 <= addr <= 239.255.255.255
//   - 只有 [Addr.Increment] 和 [Addr.Decrement] 原地修改
//
// 零值为 0.0.0.0，不在多播范围内。
type Addr struct {
	g [NumGroups]uint8
}

// AddrFrom4 从 4 字节数组创建地址，不做范围校验。
func AddrFrom4(b [4]byte) Addr {
	return Addr{g: b}
}

// AddrFromNetip 从 [netip.Addr] 创建地址。
// IPv4-mapped IPv6 地址会先转换为纯 IPv4；其他 IPv6 地址返回 [ErrMalformedAddress]。
// 不做范围校验。
func AddrFromNetip(addr netip.Addr) (Addr, error) {
	if !addr.Is4() && !addr.Is4In6() {
		return Addr{}, fmt.Errorf("%w: not an IPv4 address: %s", ErrMalformedAddress, addr)
	}
	return Addr{g: addr.Unmap().As4()}, nil
}

// ParseAddr 解析点分四段字符串。
//
// 必须恰好四段，每段为 0-255 的十进制整数，不允许符号、空白或前导零
// （"0" 本身除外）。任何一段不合法都返回 [ErrMalformedAddress]。
// 不做多播范围校验，"10.0.0.1" 可以解析成功，由 [Addr.Validate] 拒绝。
func ParseAddr(s string) (Addr, error) {
	parts := strings.Split(s, ".")
	if len(parts) != NumGroups {
		return Addr{}, fmt.Errorf("%w: want %d groups, got %d in %q", ErrMalformedAddress, NumGroups, len(parts), s)
	}
	var a Addr
	for i, p := range parts {
		v, err := parseOctet(p)
		if err != nil {
			return Addr{}, fmt.Errorf("%w: group %d %q in %q", ErrMalformedAddress, i, p, s)
		}
		a.g[i] = v
	}
	return a, nil
}

// parseOctet 严格解析单个八位段。
func parseOctet(p string) (uint8, error) {
	if p == "" || len(p) > 3 {
		return 0, ErrMalformedAddress
	}
	if len(p) > 1 && p[0] == '0' {
		return 0, ErrMalformedAddress
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return 0, ErrMalformedAddress
		}
	}
	n, err := strconv.ParseUint(p, 10, 8)
	if err != nil {
		return 0, ErrMalformedAddress
	}
	return uint8(n), nil
}

// MustParseAddr 类似 [ParseAddr]，但解析失败时 panic。
// 仅用于包级变量初始化或测试。
func MustParseAddr(s string) Addr {
	a, err := ParseAddr(s)
	if err != nil {
		panic(fmt.Sprintf("xmcast.MustParseAddr(%q): %v", s, err))
	}
	return a
}

// Octets 返回四个八位段的副本。
func (a Addr) Octets() [4]byte {
	return a.g
}

// Group 返回第 i 段的值（0 为最高位）。
func (a Addr) Group(i int) (int, error) {
	if !validGroup(i) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, i)
	}
	return int(a.g[i]), nil
}

// Netip 返回对应的 [netip.Addr]。
func (a Addr) Netip() netip.Addr {
	return netip.AddrFrom4(a.g)
}

// String 返回规范形式 "g1.g2.g3.g4"。
func (a Addr) String() string {
	var buf [15]byte // "255.255.255.255"
	return string(a.appendTo(buf[:0]))
}

func (a Addr) appendTo(b []byte) []byte {
	for i, v := range a.g {
		if i > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendUint(b, uint64(v), 10)
	}
	return b
}

// Compare 按网络字节序比较两个地址。
// 返回值：-1 (a < b), 0 (a == b), 1 (a > b)。
func (a Addr) Compare(b Addr) int {
	for i := range NumGroups {
		if a.g[i] < b.g[i] {
			return -1
		}
		if a.g[i] > b.g[i] {
			return 1
		}
	}
	return 0
}

// Validate 逐段校验多播范围，返回第一个越界分组的 [*RangeError]。
func (a Addr) Validate() error {
	for i, v := range a.g {
		if !InRange(i, int(v)) {
			return &RangeError{Group: i, Value: int(v)}
		}
	}
	return nil
}

// IsValid 报告 a 是否在多播范围 224.0.0.0-239.255.255.255 内。
func (a Addr) IsValid() bool {
	return a.Validate() == nil
}

// Increment 原地加一，从 g4 向 g1 逐段进位。
//
// 进位时低位段一律归零，而不是归到该段配置的下界；
// 已经是 239.255.255.255 时返回 [ErrRangeExhausted]，a 保持不变。
func (a *Addr) Increment() error {
	switch {
	case int(a.g[3]) < groupBounds[3].max:
		a.g[3]++
	case int(a.g[2]) < groupBounds[2].max:
		a.g[2]++
		a.g[3] = 0
	case int(a.g[1]) < groupBounds[1].max:
		a.g[1]++
		a.g[2], a.g[3] = 0, 0
	case int(a.g[0]) < groupBounds[0].max:
		a.g[0]++
		a.g[1], a.g[2], a.g[3] = 0, 0, 0
	default:
		return fmt.Errorf("%w: %s is the highest multicast address", ErrRangeExhausted, a)
	}
	return nil
}

// Decrement 原地减一，从 g4 向 g1 逐段借位，借位后低位段置 255。
//
// 已经是 224.0.0.0 时返回 [ErrRangeExhausted]，a 保持不变。
func (a *Addr) Decrement() error {
	switch {
	case int(a.g[3]) > groupBounds[3].min:
		a.g[3]--
	case int(a.g[2]) > groupBounds[2].min:
		a.g[2]--
		a.g[3] = 255
	case int(a.g[1]) > groupBounds[1].min:
		a.g[1]--
		a.g[2], a.g[3] = 255, 255
	case int(a.g[0]) > groupBounds[0].min:
		a.g[0]--
		a.g[1], a.g[2], a.g[3] = 255, 255, 255
	default:
		return fmt.Errorf("%w: %s is the lowest multicast address", ErrRangeExhausted, a)
	}
	return nil
}

// Next 返回下一个地址（a + 1），a 本身不变。
func (a Addr) Next() (Addr, error) {
	next := a
	if err := next.Increment(); err != nil {
		return Addr{}, err
	}
	return next, nil
}

// Prev 返回前一个地址（a - 1），a 本身不变。
func (a Addr) Prev() (Addr, error) {
	prev := a
	if err := prev.Decrement(); err != nil {
		return Addr{}, err
	}
	return prev, nil
}

// IsLocal 报告 a 是否为管理范围（本地）多播地址，只看 g1。
func (a Addr) IsLocal() bool {
	return InLocalRange(0, int(a.g[0]))
}

// IsGlobal 报告 a 是否为全局范围多播地址。
//
// 只组合 g1 与 g3 的逐段检查（见 [InGlobalRange]）：224.0.0.x 返回 false，
// 224.0.1.x 返回 true。需要精确的四段归属请使用 [Addr.Scope]。
func (a Addr) IsGlobal() bool {
	return InGlobalRange(0, int(a.g[0])) && InGlobalRange(2, int(a.g[2]))
}

// IsReserved 报告 a 是否在保留块 224.0.0.0/24 内。
func (a Addr) IsReserved() bool {
	return reservedRange.Contains(a.Netip())
}

// Scope 返回 a 所属的命名子范围，不在多播范围内时返回 [ScopeNone]。
func (a Addr) Scope() Scope {
	return scopeOf(a.Netip())
}

package xmcast

import (
	"errors"
	"fmt"
)

// 预定义错误变量，支持 errors.Is 判断。
var (
	// ErrMalformedAddress 表示点分四段字符串无法解析为四个 0-255 的八位段。
	ErrMalformedAddress = errors.New("xmcast: malformed address")

	// ErrInvalidSyntax 表示输入既不是 URI 也不是 IPv4 字面量。
	ErrInvalidSyntax = errors.New("xmcast: invalid address syntax")

	// ErrOutOfRange 表示某个八位段超出所在分组的多播范围。
	ErrOutOfRange = errors.New("xmcast: address out of multicast range")

	// ErrUnsupportedProtocol 表示 scheme 不在支持的协议集合内。
	ErrUnsupportedProtocol = errors.New("xmcast: unsupported protocol")

	// ErrRangeExhausted 表示递增超过 239.255.255.255 或递减低于 224.0.0.0。
	ErrRangeExhausted = errors.New("xmcast: multicast range exhausted")

	// ErrInvalidGroup 表示分组下标不在 0-3 之间（调用方错误）。
	ErrInvalidGroup = errors.New("xmcast: invalid octet group")

	// ErrNilReceiver 表示在 nil 指针上调用了反序列化方法。
	ErrNilReceiver = errors.New("xmcast: nil receiver")
)

// RangeError 描述范围校验失败的具体分组。
// errors.Is(err, ErrOutOfRange) 对 *RangeError 返回 true。
type RangeError struct {
	// Group 越界的分组下标（0 为最高位）。
	Group int
	// Value 越界的八位段值。
	Value int
}

// Error 实现 error 接口。
func (e *RangeError) Error() string {
	if e.Group < 0 || e.Group >= NumGroups {
		return fmt.Sprintf("xmcast: invalid range %d in group %d", e.Value, e.Group)
	}
	b := groupBounds[e.Group]
	return fmt.Sprintf("xmcast: invalid range %d in group %d, want [%d, %d]", e.Value, e.Group, b.min, b.max)
}

// Is 支持 errors.Is 检查。
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Unwrap 返回底层错误。
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// ProtocolError 描述不受支持的 scheme。
// errors.Is(err, ErrUnsupportedProtocol) 对 *ProtocolError 返回 true。
type ProtocolError struct {
	Scheme string
}

// Error 实现 error 接口。
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("xmcast: invalid protocol [%s]", e.Scheme)
}

// Is 支持 errors.Is 检查。
func (e *ProtocolError) Is(target error) bool {
	return target == ErrUnsupportedProtocol
}

// Unwrap 返回底层错误。
func (e *ProtocolError) Unwrap() error {
	return ErrUnsupportedProtocol
}

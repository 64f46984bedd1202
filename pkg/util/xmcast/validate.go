package xmcast

// 校验流水线：语法 → 地址构造 → 范围 → 协议，遇到第一个失败即返回。
//
// 各阶段的失败类型：
//   - 语法: [ErrInvalidSyntax]
//   - 地址构造: [ErrMalformedAddress]（如 "udp://localhost:1234"）
//   - 范围: [*RangeError]（errors.Is ErrOutOfRange）
//   - 协议: [*ProtocolError]（errors.Is ErrUnsupportedProtocol）

// ValidateSyntax 检查 s 是否为 URI 或 IPv4 字面量。
func ValidateSyntax(s string) error {
	_, err := Parse(s)
	return err
}

// ValidateRange 检查 a 的四个分组是否都在多播范围内。
func ValidateRange(a Addr) error {
	return a.Validate()
}

// ValidateProtocol 检查 scheme 是否受支持，空 scheme 视为通过。
func ValidateProtocol(scheme string) error {
	if !IsSupportedProtocol(scheme) {
		return &ProtocolError{Scheme: scheme}
	}
	return nil
}

// Result 是一次校验的结果：成功时 URI 非 nil，失败时 Err 为第一个失败阶段的错误。
// 失败原因随返回值携带，不存放在任何共享状态里，可以并发调用 [Check]。
type Result struct {
	URI *URI
	Err error
}

// OK 报告校验是否通过。
func (r Result) OK() bool {
	return r.Err == nil
}

// Check 运行完整校验流水线，从不 panic。
func Check(s string) Result {
	u, err := build(s)
	return Result{URI: u, Err: err}
}

// Validate 运行完整校验流水线，返回第一个失败阶段的错误。
func Validate(s string) error {
	return Check(s).Err
}

// IsValid 报告 s 是否能通过完整校验流水线。
func IsValid(s string) bool {
	return Check(s).OK()
}

// build 按阶段顺序构造 URI。
func build(s string) (*URI, error) {
	c, err := Parse(s)
	if err != nil {
		return nil, err
	}
	a, err := ParseAddr(c.IP)
	if err != nil {
		return nil, err
	}
	if err := ValidateRange(a); err != nil {
		return nil, err
	}
	if err := ValidateProtocol(c.Scheme); err != nil {
		return nil, err
	}
	return &URI{addr: a, scheme: c.Scheme, port: c.Port, query: c.Query}, nil
}

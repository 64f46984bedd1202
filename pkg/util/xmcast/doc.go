// Package xmcast 提供 IPv4 多播地址模型。
//
// xmcast 基于 Go 标准库 [net/netip]、[net/url] 和社区库 [go4.org/netipx] 构建，
// 表示、校验并运算 224.0.0.0-239.255.255.255 范围内的多播地址，
// 输入可以是裸点分四段字符串，也可以是带 scheme 的 URI（"udp://239.0.0.1:1234?k=v"）。
//
// # 核心功能
//
//   - range.go: 分组范围表 [MinOf] / [MaxOf] / [InRange]，命名子范围与 [Scope]
//   - parse.go: [Parse] 对输入做纯语法分类，拆出 ip/scheme/port/query
//   - addr.go: [Addr] 四段值类型，带进位/借位的 [Addr.Increment] / [Addr.Decrement]
//   - uri.go: [URI] 组合地址、scheme、端口和查询串，支持格式化与 [URI.Add] / [URI.Sub]
//   - validate.go: 语法 → 范围 → 协议三阶段校验，[Check] 返回 [Result]
//   - xmcast.go: [Create] / [Random] 等入口
//   - iter.go: [Range] / [RangeN] / [RangeReverse] 迭代器与 [Prefixes]
//   - encoding.go: Text/JSON/YAML/SQL 序列化
//
// # 快速示例
//
//	u, err := xmcast.Create("udp://239.0.20.255:5000")
//	if err != nil {
//	    return err
//	}
//	u.Add()
//	fmt.Println(u)                  // udp://239.0.21.0:5000
//	fmt.Println(u.Addr().IsLocal()) // true
//
//	fmt.Println(xmcast.IsValid("http://225.0.0.1:12345")) // false，协议不支持
//	fmt.Println(xmcast.IsValid("udp://240.0.0.1:12345"))  // false，超出范围
//
// # 进位与借位
//
// [Addr.Increment] 从 g4 向 g1 进位，低位段一律归零：
//
//	239.0.20.255    + 1 → 239.0.21.0
//	238.255.255.255 + 1 → 239.0.0.0
//	239.255.255.255 + 1 → ErrRangeExhausted
//
// [Addr.Decrement] 从 g4 向 g1 借位，低位段置 255，下界为 224.0.0.0：
//
//	225.0.0.0 - 1 → 224.255.255.255
//	224.0.0.0 - 1 → ErrRangeExhausted（地址保持不变）
//
// 两个方向在边界处都返回 [ErrRangeExhausted]，不会静默停在原地。
//
// # 作用域判断
//
// [Addr.IsLocal] 只看 g1 是否为 239。
// [Addr.IsGlobal] 是逐段的粗粒度判断，只组合 g1 ∈ [224,238] 与 g3 ∈ [1,255]：
// 224.0.0.x 返回 false，224.0.1.x 返回 true。
// 需要按四段精确归属时使用 [Addr.Scope]，它基于 [netipx.IPRange] 匹配
// reserved / global / local 三个子范围。
//
// # 错误处理
//
// 预定义错误变量支持 errors.Is 判断：
//
//	err := xmcast.Validate("udp://240.0.0.1:1234")
//	if errors.Is(err, xmcast.ErrOutOfRange) {
//	    var re *xmcast.RangeError
//	    errors.As(err, &re) // re.Group == 0, re.Value == 240
//	}
//
// [Check] 把失败原因作为返回值携带，不依赖共享状态，可并发调用。
//
// # 并发
//
// [Addr] 是值类型，并发安全。[*URI] 的 Set*/Add/Sub 原地修改，
// 跨 goroutine 使用前请 [URI.Clone]。
package xmcast

// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xmcast: IPv4 多播地址工具库，基于 net/netip + go4.org/netipx，
//     支持 URI 解析、三阶段校验、带进位/借位的地址步进、区间迭代与序列化
//
// 设计原则：
//   - 值类型优先，零依赖共享状态，可并发使用
//   - 预定义错误变量，支持 errors.Is / errors.As
package util

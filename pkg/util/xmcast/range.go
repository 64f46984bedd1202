package xmcast

import (
	"fmt"
	"math/rand/v2"
	"net/netip"

	"go4.org/netipx"
)

// NumGroups 是 IPv4 地址的八位段分组数量。
const NumGroups = 4

// bounds 是单个分组的闭区间 [min, max]。
type bounds struct {
	min, max int
}

// groupBounds 是各分组的多播取值范围（RFC 1112，224.0.0.0/4）。
// 只有 group 0 的下界非零。
var groupBounds = [NumGroups]bounds{
	{min: 224, max: 239},
	{min: 0, max: 255},
	{min: 0, max: 255},
	{min: 0, max: 255},
}

// random 用 intn 在 [min, max] 内均匀取值。
func (b bounds) random(intn func(int) int) int {
	return b.min + intn(b.max-b.min+1)
}

// subRange 是按分组存放的命名子范围，min/max 均为四段。
type subRange struct {
	min, max [NumGroups]uint8
}

var (
	// reservedTable 保留给知名多播地址（链路本地控制块）。
	reservedTable = subRange{
		min: [NumGroups]uint8{224, 0, 0, 0},
		max: [NumGroups]uint8{224, 0, 0, 255},
	}

	// globalTable 全局范围（Internet 可路由）多播地址。
	globalTable = subRange{
		min: [NumGroups]uint8{224, 0, 1, 0},
		max: [NumGroups]uint8{238, 255, 255, 255},
	}

	// localTable 管理范围（本地）多播地址，239.0.0.0/8。
	localTable = subRange{
		min: [NumGroups]uint8{239, 0, 0, 0},
		max: [NumGroups]uint8{239, 255, 255, 255},
	}
)

// inGroup 报告 value 是否落在 sr 第 group 段的闭区间内。
func (sr subRange) inGroup(group, value int) bool {
	if !validGroup(group) {
		return false
	}
	return value >= int(sr.min[group]) && value <= int(sr.max[group])
}

// ipRange 将子范围转换为 [netipx.IPRange]。
func (sr subRange) ipRange() netipx.IPRange {
	return netipx.IPRangeFrom(netip.AddrFrom4(sr.min), netip.AddrFrom4(sr.max))
}

var (
	multicastRange = netipx.IPRangeFrom(
		netip.AddrFrom4([4]byte{224, 0, 0, 0}),
		netip.AddrFrom4([4]byte{239, 255, 255, 255}),
	)
	reservedRange = reservedTable.ipRange()
	globalRange   = globalTable.ipRange()
	localRange    = localTable.ipRange()
)

func validGroup(group int) bool {
	return group >= 0 && group < NumGroups
}

// MinOf 返回分组 group 的下界。
// group 不在 0-3 时返回 [ErrInvalidGroup]。
func MinOf(group int) (int, error) {
	if !validGroup(group) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, group)
	}
	return groupBounds[group].min, nil
}

// MaxOf 返回分组 group 的上界。
// group 不在 0-3 时返回 [ErrInvalidGroup]。
func MaxOf(group int) (int, error) {
	if !validGroup(group) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, group)
	}
	return groupBounds[group].max, nil
}

// RandomInRange 返回分组 group 范围内均匀分布的随机值（含两端）。
func RandomInRange(group int) (int, error) {
	if !validGroup(group) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, group)
	}
	return groupBounds[group].random(rand.IntN), nil
}

// RandomInRangeWith 与 [RandomInRange] 相同，但使用调用方提供的随机源。
// 适用于需要可复现结果的场景（测试、仿真）。
func RandomInRangeWith(r *rand.Rand, group int) (int, error) {
	if !validGroup(group) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, group)
	}
	return groupBounds[group].random(r.IntN), nil
}

// InRange 报告 value 是否在分组 group 的范围内（两端均包含）。
// 无效分组返回 false。
func InRange(group, value int) bool {
	if !validGroup(group) {
		return false
	}
	b := groupBounds[group]
	return value >= b.min && value <= b.max
}

// InLocalRange 报告 value 是否在本地（管理范围）子表第 group 段内。
// 无效分组返回 false。
func InLocalRange(group, value int) bool {
	return localTable.inGroup(group, value)
}

// InGlobalRange 报告 value 是否在全局子表第 group 段内。
// 无效分组返回 false。
//
// 这是逐段的粗粒度检查，不是四段联合的范围判断：
// 例如 224.0.0.5 的每一段都落在全局子表对应段内，但该地址属于保留块。
// [Addr.IsGlobal] 只组合 group 0 与 group 2 的结果；需要精确归属时使用 [Addr.Scope]。
func InGlobalRange(group, value int) bool {
	return globalTable.inGroup(group, value)
}

// MulticastRange 返回完整的 IPv4 多播范围 224.0.0.0-239.255.255.255。
func MulticastRange() netipx.IPRange { return multicastRange }

// ReservedRange 返回保留范围 224.0.0.0-224.0.0.255。
func ReservedRange() netipx.IPRange { return reservedRange }

// GlobalRange 返回全局范围 224.0.1.0-238.255.255.255。
func GlobalRange() netipx.IPRange { return globalRange }

// LocalRange 返回本地（管理范围）239.0.0.0-239.255.255.255。
func LocalRange() netipx.IPRange { return localRange }

// Scope 是多播地址按命名子范围的精确归属。
type Scope uint8

const (
	// ScopeNone 表示地址不在多播范围内。
	ScopeNone Scope = iota
	// ScopeReserved 表示保留块 224.0.0.0/24。
	ScopeReserved
	// ScopeGlobal 表示全局范围 224.0.1.0-238.255.255.255。
	ScopeGlobal
	// ScopeLocal 表示管理范围 239.0.0.0/8。
	ScopeLocal
)

// String 返回 Scope 的字符串表示。
func (s Scope) String() string {
	switch s {
	case ScopeReserved:
		return "reserved"
	case ScopeGlobal:
		return "global"
	case ScopeLocal:
		return "local"
	default:
		return "none"
	}
}

// MarshalText 实现 [encoding.TextMarshaler]。
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// scopeOf 按三个子范围做精确匹配。三个子范围恰好覆盖整个多播范围。
func scopeOf(addr netip.Addr) Scope {
	switch {
	case reservedRange.Contains(addr):
		return ScopeReserved
	case globalRange.Contains(addr):
		return ScopeGlobal
	case localRange.Contains(addr):
		return ScopeLocal
	default:
		return ScopeNone
	}
}

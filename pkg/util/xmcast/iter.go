package xmcast

import (
	"iter"
	"net/netip"

	"go4.org/netipx"
)

// Range 返回从 from 到 to（包含）的多播地址迭代器，按 [Addr.Next] 顺序前进。
// from > to 时返回空迭代器；到达 239.255.255.255 后自动终止。
//
// 示例：
//
//	from := xmcast.MustParseAddr("239.0.0.254")
//	to := xmcast.MustParseAddr("239.0.1.1")
//	for addr := range xmcast.Range(from, to) {
//	    fmt.Println(addr) // 239.0.0.254, 239.0.0.255, 239.0.1.0, 239.0.1.1
//	}
func Range(from, to Addr) iter.Seq[Addr] {
	return func(yield func(Addr) bool) {
		if from.Compare(to) > 0 {
			return
		}
		current := from
		for {
			if !yield(current) {
				return
			}
			if current == to {
				return
			}
			next, err := current.Next()
			if err != nil {
				return
			}
			current = next
		}
	}
}

// RangeN 返回从 start 开始的 n 个连续地址的迭代器。
// n <= 0 时返回空迭代器；在取满 n 个之前耗尽范围时提前终止。
func RangeN(start Addr, n int) iter.Seq[Addr] {
	return func(yield func(Addr) bool) {
		current := start
		for remaining := n; remaining > 0; remaining-- {
			if !yield(current) {
				return
			}
			if remaining == 1 {
				return
			}
			next, err := current.Next()
			if err != nil {
				return
			}
			current = next
		}
	}
}

// RangeReverse 返回从 to 递减到 from（包含）的迭代器。
// from > to 时返回空迭代器；到达 224.0.0.0 后自动终止。
func RangeReverse(from, to Addr) iter.Seq[Addr] {
	return func(yield func(Addr) bool) {
		if from.Compare(to) > 0 {
			return
		}
		current := to
		for {
			if !yield(current) {
				return
			}
			if current == from {
				return
			}
			prev, err := current.Prev()
			if err != nil {
				return
			}
			current = prev
		}
	}
}

// RangeCount 返回 from 到 to（包含两端）的地址数量，from > to 时返回 0。
func RangeCount(from, to Addr) uint64 {
	if from.Compare(to) > 0 {
		return 0
	}
	return uint64(addrToUint32(to)-addrToUint32(from)) + 1
}

// Prefixes 将 from-to 分解为最少数量的 CIDR 前缀。
// from > to 时返回 nil。
//
// 示例：
//
//	xmcast.Prefixes(xmcast.MustParseAddr("239.1.0.0"), xmcast.MustParseAddr("239.1.1.255"))
//	// [239.1.0.0/23]
func Prefixes(from, to Addr) []netip.Prefix {
	r := netipx.IPRangeFrom(from.Netip(), to.Netip())
	if !r.IsValid() {
		return nil
	}
	return r.Prefixes()
}

func addrToUint32(a Addr) uint32 {
	return uint32(a.g[0])<<24 | uint32(a.g[1])<<16 | uint32(a.g[2])<<8 | uint32(a.g[3])
}

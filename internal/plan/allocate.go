package plan

import (
	"fmt"

	"github.com/omeyang/xmcast/pkg/util/xmcast"
)

// Allocation 是分配给某个频道的一个组地址。
type Allocation struct {
	Channel string      `json:"channel" yaml:"channel"`
	Index   int         `json:"index" yaml:"index"`
	URI     *xmcast.URI `json:"uri" yaml:"uri"`
}

// firstGlobal 是保留块之后的第一个地址 224.0.1.0。
var firstGlobal = func() xmcast.Addr {
	a, err := xmcast.AddrFromNetip(xmcast.GlobalRange().From())
	if err != nil {
		panic(err)
	}
	return a
}()

// lastAddr 是多播范围的最后一个地址 239.255.255.255。
var lastAddr = xmcast.AddrFrom4(xmcast.MulticastRange().To().As4())

// Allocate 从 p.Base 开始按 [xmcast.Addr.Next] 顺序为每个频道分配地址。
//
// 地址连续，跨八位段时按进位规则前进；SkipReserved 时落入保留块的地址
// 直接跳到 224.0.1.0。在分配完成前到达 239.255.255.255 时返回
// 包装了 [xmcast.ErrRangeExhausted] 的错误。
func Allocate(p *Plan) ([]Allocation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	base, err := xmcast.Create(p.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: base %q: %w", ErrInvalidPlan, p.Base, err)
	}

	cur := base.Addr()
	out := make([]Allocation, 0, min(uint64(p.Total()), xmcast.RangeCount(cur, lastAddr)))
	first := true
	for _, ch := range p.Channels {
		for i := range ch.Count {
			if !first {
				next, err := cur.Next()
				if err != nil {
					return nil, fmt.Errorf("plan: channel %q #%d: %w", ch.Name, i, err)
				}
				cur = next
			}
			first = false
			if p.SkipReserved && cur.IsReserved() {
				cur = firstGlobal
			}

			u := base.Clone()
			if err := u.SetAddr(cur); err != nil {
				return nil, fmt.Errorf("plan: channel %q #%d: %w", ch.Name, i, err)
			}
			if ch.Port > 0 {
				u.SetPort(ch.Port)
			}
			if ch.Query != "" {
				u.SetQuery(ch.Query)
			}
			out = append(out, Allocation{Channel: ch.Name, Index: i, URI: u})
		}
	}
	return out, nil
}

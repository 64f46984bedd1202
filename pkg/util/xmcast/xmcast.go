package xmcast

import (
	"fmt"
	"math/rand/v2"
)

// Create 解析并校验 s，返回填充好的 URI。
// s 可以是裸 IPv4 字面量或 "scheme://ip[:port][?query]"。
//
//	u, err := xmcast.Create("udp://239.0.0.1:5000")
func Create(s string) (*URI, error) {
	return build(s)
}

// MustCreate 类似 [Create]，但失败时 panic。
// 仅用于包级变量初始化或测试。
func MustCreate(s string) *URI {
	u, err := Create(s)
	if err != nil {
		panic(fmt.Sprintf("xmcast.MustCreate(%q): %v", s, err))
	}
	return u
}

// Random 返回各分组独立随机取值的 URI（不带 scheme、端口和查询串）。
// 结果只保证落在 224.0.0.0-239.255.255.255 内，不保证属于某个特定子范围。
func Random() *URI {
	return randomURI(rand.IntN)
}

// RandomWith 与 [Random] 相同，但使用调用方提供的随机源。
func RandomWith(r *rand.Rand) *URI {
	return randomURI(r.IntN)
}

func randomURI(intn func(int) int) *URI {
	var a Addr
	for i, b := range groupBounds {
		a.g[i] = uint8(b.random(intn))
	}
	return &URI{addr: a}
}

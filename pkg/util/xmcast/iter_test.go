package xmcast

import (
	"iter"
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(seq iter.Seq[Addr]) []string {
	var out []string
	for a := range seq {
		out = append(out, a.String())
	}
	return out
}

func TestRange(t *testing.T) {
	got := collect(Range(MustParseAddr("239.0.0.254"), MustParseAddr("239.0.1.1")))
	assert.Equal(t, []string{"239.0.0.254", "239.0.0.255", "239.0.1.0", "239.0.1.1"}, got)

	assert.Equal(t, []string{"239.0.0.1"}, collect(Range(MustParseAddr("239.0.0.1"), MustParseAddr("239.0.0.1"))))
	assert.Empty(t, collect(Range(MustParseAddr("239.0.0.2"), MustParseAddr("239.0.0.1"))))

	// 到达上界后终止。
	got = collect(Range(MustParseAddr("239.255.255.254"), MustParseAddr("239.255.255.255")))
	assert.Equal(t, []string{"239.255.255.254", "239.255.255.255"}, got)
}

func TestRange_EarlyBreak(t *testing.T) {
	n := 0
	for range Range(MustParseAddr("224.0.0.0"), MustParseAddr("239.255.255.255")) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestRangeN(t *testing.T) {
	got := collect(RangeN(MustParseAddr("238.255.255.254"), 3))
	assert.Equal(t, []string{"238.255.255.254", "238.255.255.255", "239.0.0.0"}, got)

	assert.Empty(t, collect(RangeN(MustParseAddr("239.0.0.1"), 0)))
	assert.Empty(t, collect(RangeN(MustParseAddr("239.0.0.1"), -1)))

	got = collect(RangeN(MustParseAddr("239.255.255.254"), 10))
	assert.Equal(t, []string{"239.255.255.254", "239.255.255.255"}, got)
}

func TestRangeReverse(t *testing.T) {
	got := collect(RangeReverse(MustParseAddr("224.255.255.254"), MustParseAddr("225.0.0.1")))
	assert.Equal(t, []string{"225.0.0.1", "225.0.0.0", "224.255.255.255", "224.255.255.254"}, got)

	got = collect(RangeReverse(MustParseAddr("224.0.0.0"), MustParseAddr("224.0.0.1")))
	assert.Equal(t, []string{"224.0.0.1", "224.0.0.0"}, got)

	assert.Empty(t, collect(RangeReverse(MustParseAddr("239.0.0.2"), MustParseAddr("239.0.0.1"))))

	forward := collect(Range(MustParseAddr("239.0.0.250"), MustParseAddr("239.0.1.5")))
	backward := collect(RangeReverse(MustParseAddr("239.0.0.250"), MustParseAddr("239.0.1.5")))
	slices.Reverse(backward)
	assert.Equal(t, forward, backward)
}

func TestRangeCount(t *testing.T) {
	assert.Equal(t, uint64(4), RangeCount(MustParseAddr("239.0.0.254"), MustParseAddr("239.0.1.1")))
	assert.Equal(t, uint64(1), RangeCount(MustParseAddr("239.0.0.1"), MustParseAddr("239.0.0.1")))
	assert.Equal(t, uint64(0), RangeCount(MustParseAddr("239.0.0.2"), MustParseAddr("239.0.0.1")))
	assert.Equal(t, uint64(1)<<28, RangeCount(MustParseAddr("224.0.0.0"), MustParseAddr("239.255.255.255")))
}

func TestPrefixes(t *testing.T) {
	got := Prefixes(MustParseAddr("239.1.0.0"), MustParseAddr("239.1.1.255"))
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("239.1.0.0/23")}, got)

	got = Prefixes(MustParseAddr("224.0.0.0"), MustParseAddr("239.255.255.255"))
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("224.0.0.0/4")}, got)

	got = Prefixes(MustParseAddr("239.0.0.1"), MustParseAddr("239.0.0.2"))
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("239.0.0.1/32"),
		netip.MustParsePrefix("239.0.0.2/32"),
	}, got)

	assert.Nil(t, Prefixes(MustParseAddr("239.0.0.2"), MustParseAddr("239.0.0.1")))
}

package xmcast

import "testing"

func BenchmarkParseAddr(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_, _ = ParseAddr("239.10.20.30")
	}
}

func BenchmarkCheck(b *testing.B) {
	inputs := []struct {
		name  string
		input string
	}{
		{"uri", "udp://239.0.0.1:12345?test=12343"},
		{"bare", "239.0.0.1"},
		{"out_of_range", "udp://240.0.0.1:12345"},
	}
	for _, tc := range inputs {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = Check(tc.input)
			}
		})
	}
}

func BenchmarkAddrString(b *testing.B) {
	a := MustParseAddr("239.255.255.255")
	b.ReportAllocs()
	for b.Loop() {
		_ = a.String()
	}
}

func BenchmarkAddrIncrement(b *testing.B) {
	a := MustParseAddr("224.0.0.0")
	b.ReportAllocs()
	for b.Loop() {
		if err := a.Increment(); err != nil {
			a = MustParseAddr("224.0.0.0")
		}
	}
}

func BenchmarkURIString(b *testing.B) {
	u := MustCreate("udp://239.0.0.1:12345?test=12343")
	b.ReportAllocs()
	for b.Loop() {
		_ = u.String()
	}
}

package compress

import (
	"fmt"
	"testing"
)

func BenchmarkAllCodecs_Compress(b *testing.B) {
	for _, months := range []int{120, 600, 600 * 64} {
		data := monthlyPayload(months)
		for name, codec := range getAllCodecs() {
			b.Run(fmt.Sprintf("%s/%d_months", name, months), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				for b.Loop() {
					_, _ = codec.Compress(data)
				}
			})
		}
	}
}

func BenchmarkAllCodecs_Decompress(b *testing.B) {
	for _, months := range []int{120, 600, 600 * 64} {
		data := monthlyPayload(months)
		for name, codec := range getAllCodecs() {
			compressed, err := codec.Compress(data)
			if err != nil {
				b.Fatal(err)
			}
			b.Run(fmt.Sprintf("%s/%d_months", name, months), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				for b.Loop() {
					_, _ = codec.Decompress(compressed)
				}
			})
		}
	}
}

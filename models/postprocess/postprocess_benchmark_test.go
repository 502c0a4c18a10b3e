package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-detect/images"
)

// syntheticOutput fills a full 640x640 YOLOv8 output with random boxes, of
// which roughly one in hundred scores above 0.5.
func syntheticOutput(classes int) []float32 {
	r := rand.New(rand.NewSource(42))
	n := Candidates(640)
	cands := make([]candidate, n)
	for i := range cands {
		cands[i] = candidate{
			xc:    r.Float32() * 640,
			yc:    r.Float32() * 640,
			w:     10 + r.Float32()*200,
			h:     10 + r.Float32()*200,
			class: r.Intn(classes),
			score: r.Float32() * 0.505,
		}
	}
	return buildOutput(classes, cands)
}

// BenchmarkDecodeYOLOv8 measures decoding of a full 8400 anchor output.
func BenchmarkDecodeYOLOv8(b *testing.B) {
	output := syntheticOutput(80)
	cfg := YOLOv8Config{
		NumClasses:          80,
		InputWidth:          640,
		InputHeight:         640,
		SrcWidth:            1920,
		SrcHeight:           1080,
		ConfidenceThreshold: 0.5,
		NMS:                 NMSConfig{IoUThreshold: 0.7},
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := DecodeYOLOv8(output, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkApplyGreedyNMS_Dense tests NMS over many heavily overlapping boxes.
func BenchmarkApplyGreedyNMS_Dense(b *testing.B) {
	r := rand.New(rand.NewSource(7))
	dets := make([]Result, 300)
	for i := range dets {
		x, y := r.Float32()*100, r.Float32()*100
		dets[i] = Result{
			Box:   images.Box{X1: x, Y1: y, X2: x + 200, Y2: y + 200},
			Score: r.Float32(),
			Class: r.Intn(3),
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		in := make([]Result, len(dets))
		copy(in, dets)
		_ = ApplyGreedyNMS(in, NMSConfig{IoUThreshold: 0.5})
	}
}

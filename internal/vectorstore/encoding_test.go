package vectorstore

import (
	"math"
	"testing"
)

func TestEncodeDecodeVector(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"small", []float32{1, 2, 3}},
		{"negatives", []float32{-0.5, 0, 0.5}},
		{"single", []float32{42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := EncodeVector(tt.vec)
			if len(blob) != 4*len(tt.vec) {
				t.Fatalf("blob length = %d, want %d", len(blob), 4*len(tt.vec))
			}
			got, err := DecodeVector(blob)
			if err != nil {
				t.Fatalf("DecodeVector() error = %v", err)
			}
			if len(got) != len(tt.vec) {
				t.Fatalf("decoded length = %d, want %d", len(got), len(tt.vec))
			}
			for i := range got {
				if got[i] != tt.vec[i] {
					t.Errorf("element %d = %v, want %v", i, got[i], tt.vec[i])
				}
			}
		})
	}
}

func TestDecodeVector_BadLength(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("DecodeVector() with truncated blob expected error")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1, false},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, false},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1, false},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1, false},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0, true},
		{"empty", nil, nil, 0, true},
		{"zero magnitude", []float32{0, 0}, []float32{1, 1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Error("CosineSimilarity() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CosineSimilarity() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

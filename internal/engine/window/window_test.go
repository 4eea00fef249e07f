package window

import "testing"

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		w, h int
		want float32
	}{
		{1280, 720, 1280.0 / 720.0},
		{800, 800, 1},
		{0, 600, 1},
		{600, -1, 1},
	}
	for _, tt := range tests {
		if got := AspectRatio(tt.w, tt.h); got != tt.want {
			t.Errorf("AspectRatio(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

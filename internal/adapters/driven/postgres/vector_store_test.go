package postgres

import "testing"

func TestVectorLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want string
	}{
		{"empty", nil, "[]"},
		{"single", []float32{1}, "[1]"},
		{"mixed", []float32{0.5, -0.25, 3}, "[0.5,-0.25,3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vectorLiteral(tt.in); got != tt.want {
				t.Errorf("vectorLiteral() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashLockName_Stable(t *testing.T) {
	a := hashLockName("confirm:proj-1:item-1")
	b := hashLockName("confirm:proj-1:item-1")
	c := hashLockName("confirm:proj-1:item-2")

	if a != b {
		t.Error("expected identical names to hash identically")
	}
	if a == c {
		t.Error("expected different names to hash differently")
	}
}

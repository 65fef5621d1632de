package shortid

import (
	"strings"
	"testing"
)

func TestGenerator_Generate_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"default", 0, DefaultLength},
		{"negative falls back", -3, DefaultLength},
		{"explicit", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := New(tt.length)
			code, err := g.Generate()
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(code) != tt.want {
				t.Errorf("len(code) = %d, want %d", len(code), tt.want)
			}
		})
	}
}

func TestGenerator_Generate_Alphabet(t *testing.T) {
	t.Parallel()

	g := New(DefaultLength)
	for i := 0; i < 100; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}

func TestGenerator_Generate_NotConstant(t *testing.T) {
	t.Parallel()

	g := New(DefaultLength)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[code] = true
	}

	// 50 draws from a 62^7 space colliding down to a handful of values
	// would mean the entropy source is broken.
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes in 50 draws", len(seen))
	}
}

func TestNewULID_SortableAndUnique(t *testing.T) {
	t.Parallel()

	a := NewULID()
	b := NewULID()

	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("unexpected ULID lengths: %d, %d", len(a), len(b))
	}
	if a == b {
		t.Fatalf("consecutive ULIDs are equal: %s", a)
	}
}

package ptr_test

import (
	"testing"

	"github.com/repwise/repwise/internal/ptr"
)

func TestRef(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		s := "test"
		p := ptr.Ref(s)
		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}
		if *p != s {
			t.Errorf("Expected %q, got %q", s, *p)
		}
		// Modifying the original value must not affect the pointer.
		s = "modified"
		if *p == s {
			t.Errorf("Pointer value should not change when original value is modified")
		}
	})

	t.Run("float64", func(t *testing.T) {
		f := 62.5
		p := ptr.Ref(f)
		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}
		if *p != f {
			t.Errorf("Expected %f, got %f", f, *p)
		}
	})
}

func TestDeref(t *testing.T) {
	if got := ptr.Deref(nil, 42); got != 42 {
		t.Errorf("Deref(nil, 42) = %d, want 42", got)
	}
	if got := ptr.Deref(ptr.Ref(7), 42); got != 7 {
		t.Errorf("Deref(&7, 42) = %d, want 7", got)
	}
}

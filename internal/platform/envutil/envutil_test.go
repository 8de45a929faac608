package envutil

import (
	"testing"
	"time"
)

func TestParsersFallBackOnGarbage(t *testing.T) {
	t.Setenv("MM_INT", "nope")
	t.Setenv("MM_DUR", "45")
	t.Setenv("MM_BOOL", "off")
	t.Setenv("MM_LIST", " a, ,b ")

	if got := Int("MM_INT", 3); got != 3 {
		t.Fatalf("Int: got %d want 3", got)
	}
	if got := Duration("MM_DUR", time.Second); got != 45*time.Second {
		t.Fatalf("Duration: got %s", got)
	}
	if got := Bool("MM_BOOL", true); got {
		t.Fatalf("Bool: expected false")
	}
	if got := List("MM_LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got %v", got)
	}
	if got := String("MM_UNSET", "def"); got != "def" {
		t.Fatalf("String: got %q", got)
	}
}

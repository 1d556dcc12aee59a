package pointers

import "testing"

func TestPtrAndDeref(t *testing.T) {
	p := Ptr("code")
	if got := Deref(p, "none"); got != "code" {
		t.Fatalf("Deref(p)=%q", got)
	}
	var missing *string
	if got := Deref(missing, "none"); got != "none" {
		t.Fatalf("Deref(nil)=%q", got)
	}
	n := 1
	q := Ptr(n)
	n = 2
	if *q != 1 {
		t.Fatalf("Ptr aliased its argument")
	}
}

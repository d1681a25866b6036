package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("plugin.rlx", []byte("plugin Demo {\n  fn run() {}\n}\n"))

	start, end := fs.Resolve(Span{File: id, Start: 16, End: 18})
	if start.Line != 2 || start.Col != 3 {
		t.Fatalf("start = %v, want line 2 col 3", start)
	}
	if end.Line != 2 || end.Col != 5 {
		t.Fatalf("end = %v, want line 2 col 5", end)
	}
}

func TestFileLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("plugin.rlx", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	cases := []struct {
		n    uint32
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tc := range cases {
		if got := f.Line(tc.n); got != tc.want {
			t.Errorf("Line(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	c := a.Cover(b)
	if c.Start != 5 || c.End != 20 {
		t.Fatalf("cover = %v, want 5-20", c)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover must be a no-op")
	}
}

func TestLookupReturnsLatest(t *testing.T) {
	fs := NewFileSet()
	fs.Add("a.rlx", []byte("x"))
	second := fs.Add("a.rlx", []byte("y"))
	id, ok := fs.Lookup("a.rlx")
	if !ok || id != second {
		t.Fatalf("Lookup = (%v, %v), want latest id %v", id, ok, second)
	}
}

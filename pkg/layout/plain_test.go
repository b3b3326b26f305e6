package layout

import (
	"math"
	"testing"
)

const samplePlain = `graph 1 4.5 2.0
node "table:orders" 0.5 1.5 3.3333 0.8889 "orders" solid box white white
node "snap:1" 2.5 1.0 3.0556 0.7778 "snapshot 1" solid box white white
edge "table:orders" "snap:1" 4 0.9 1.4 1.4 1.3 1.9 1.2 2.1 1.1 solid black
stop
`

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParsePlain(t *testing.T) {
	res, err := parsePlain(samplePlain)
	if err != nil {
		t.Fatalf("parsePlain() error = %v", err)
	}

	if !approx(res.Width, 4.5*72) || !approx(res.Height, 2.0*72) {
		t.Errorf("dimensions = %g x %g, want %g x %g", res.Width, res.Height, 4.5*72, 2.0*72)
	}

	p, ok := res.Positions["table:orders"]
	if !ok {
		t.Fatal("no position for table:orders")
	}
	// x converts directly; y flips from bottom-left to top-left origin.
	if !approx(p.X, 0.5*72) || !approx(p.Y, (2.0-1.5)*72) {
		t.Errorf("table position = (%g, %g), want (%g, %g)", p.X, p.Y, 0.5*72, 0.5*72)
	}

	pts := res.EdgePaths["table:orders->snap:1"]
	if len(pts) != 4 {
		t.Fatalf("edge points = %d, want 4", len(pts))
	}
	if !approx(pts[0].X, 0.9*72) || !approx(pts[0].Y, (2.0-1.4)*72) {
		t.Errorf("first edge point = (%g, %g)", pts[0].X, pts[0].Y)
	}
}

func TestParsePlainQuotedNames(t *testing.T) {
	plain := `graph 1 2 2
node "file:/data/with space.parquet" 1 1 1 1 "f" solid box white white
stop
`
	res, err := parsePlain(plain)
	if err != nil {
		t.Fatalf("parsePlain() error = %v", err)
	}
	if _, ok := res.Positions["file:/data/with space.parquet"]; !ok {
		t.Errorf("quoted name not parsed, got %v", res.Positions)
	}
}

func TestParsePlainMalformed(t *testing.T) {
	cases := []struct {
		name  string
		plain string
	}{
		{"bad graph line", "graph 1 x y\nstop\n"},
		{"bad node coords", "graph 1 2 2\nnode a x y 1 1\nstop\n"},
		{"short edge spline", "graph 1 2 2\nedge a b 3 0.1 0.2\nstop\n"},
		{"unterminated quote", "graph 1 2 2\nnode \"broken 1 1 1 1\nstop\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parsePlain(tc.plain); err == nil {
				t.Error("parsePlain() = nil error, want failure")
			}
		})
	}
}

func TestSplitPlainLineEscapes(t *testing.T) {
	fields, err := splitPlainLine(`node "a \"quoted\" name" 1 2`)
	if err != nil {
		t.Fatalf("splitPlainLine() error = %v", err)
	}
	want := []string{"node", `a "quoted" name`, "1", "2"}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

package layout

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/icemap-dev/icemap/pkg/errors"
	"github.com/icemap-dev/icemap/pkg/graph"
)

// Result holds computed positions in points, y growing downwards, node
// coordinates at the node center.
type Result struct {
	Positions map[string]graph.Point
	EdgePaths map[string][]graph.Point // keyed by edge id
	Width     float64
	Height    float64
}

// parsePlain reads Graphviz "plain" output into a Result.
//
// The plain format is line-oriented: a "graph" header with scale and
// dimensions, one "node" line per node, one "edge" line per edge, and a
// final "stop". Coordinates are in inches with the origin at the bottom
// left; they are converted to top-left-origin points here.
func parsePlain(out string) (*Result, error) {
	res := &Result{
		Positions: make(map[string]graph.Point),
		EdgePaths: make(map[string][]graph.Point),
	}

	var height float64
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		fields, err := splitPlainLine(sc.Text())
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed graph line: %q", sc.Text())
			}
			w, werr := strconv.ParseFloat(fields[2], 64)
			h, herr := strconv.ParseFloat(fields[3], 64)
			if werr != nil || herr != nil {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed graph dimensions: %q", sc.Text())
			}
			res.Width = w * pointsPerInch
			res.Height = h * pointsPerInch
			height = h

		case "node":
			if len(fields) < 4 {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed node line: %q", sc.Text())
			}
			x, xerr := strconv.ParseFloat(fields[2], 64)
			y, yerr := strconv.ParseFloat(fields[3], 64)
			if xerr != nil || yerr != nil {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed node coordinates: %q", sc.Text())
			}
			res.Positions[fields[1]] = graph.Point{
				X: x * pointsPerInch,
				Y: (height - y) * pointsPerInch,
			}

		case "edge":
			if len(fields) < 4 {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed edge line: %q", sc.Text())
			}
			n, err := strconv.Atoi(fields[3])
			if err != nil || len(fields) < 4+2*n {
				return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed edge spline: %q", sc.Text())
			}
			pts := make([]graph.Point, 0, n)
			for i := 0; i < n; i++ {
				x, xerr := strconv.ParseFloat(fields[4+2*i], 64)
				y, yerr := strconv.ParseFloat(fields[5+2*i], 64)
				if xerr != nil || yerr != nil {
					return nil, errors.New(errors.ErrCodeLayoutFailed, "malformed edge point: %q", sc.Text())
				}
				pts = append(pts, graph.Point{
					X: x * pointsPerInch,
					Y: (height - y) * pointsPerInch,
				})
			}
			res.EdgePaths[graph.EdgeID(fields[1], fields[2])] = pts

		case "stop":
			return res, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "scan plain output")
	}
	return res, nil
}

// splitPlainLine splits a plain-format line into fields, honoring the
// format's double-quoted names with backslash escapes.
func splitPlainLine(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	started := false

	flush := func() {
		if started {
			fields = append(fields, cur.String())
			cur.Reset()
			started = false
		}
	}

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "unterminated quote: %q", line)
	}
	flush()
	return fields, nil
}

package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/logger"
)

// ErrNoGeometry is returned for files without any triangle.
var ErrNoGeometry = errors.New("obj: no triangle geometry")

// ParseError locates a malformed record.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("obj: line %d: %s", e.Line, e.Msg)
}

// ParseOBJ reads vertex positions and faces. Polygons are fan-triangulated,
// negative indices count back from the latest vertex, and texture/normal
// references are ignored. Line and point elements are skipped.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var (
		verts   [][3]float32
		out     []float32
		name    string
		skipped int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, &ParseError{Line: line, Msg: "vertex needs 3 coordinates"}
			}
			var v [3]float32
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, &ParseError{Line: line, Msg: fmt.Sprintf("bad coordinate %q", fields[i+1])}
				}
				v[i] = float32(f)
			}
			verts = append(verts, v)

		case "f":
			if len(fields) < 4 {
				return nil, &ParseError{Line: line, Msg: "face needs at least 3 vertices"}
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				i, err := resolveIndex(ref, len(verts))
				if err != nil {
					return nil, &ParseError{Line: line, Msg: err.Error()}
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				for _, i := range [3]int{idx[0], idx[k], idx[k+1]} {
					v := verts[i]
					out = append(out, v[0], v[1], v[2])
				}
			}

		case "l", "p":
			skipped++

		case "o":
			if name == "" && len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: reading: %w", err)
	}

	if skipped > 0 {
		logger.Debug("obj: skipped non-triangle elements", zap.Int("count", skipped))
	}
	if len(out) == 0 {
		return nil, ErrNoGeometry
	}
	return &Mesh{Name: name, Positions: out}, nil
}

// ParseOBJString is ParseOBJ over an in-memory document.
func ParseOBJString(doc string) (*Mesh, error) {
	return ParseOBJ(strings.NewReader(doc))
}

// resolveIndex turns a face reference like "3", "3/1/2" or "-1//4" into a
// zero-based vertex index.
func resolveIndex(ref string, count int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, fmt.Errorf("face index %d out of range (have %d vertices)", n, count)
	}
}

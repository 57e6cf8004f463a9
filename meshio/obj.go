package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akmonengine/flatface/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// ReadOBJ reads v, f, g and o statements. Face indices may be 1-based or
// negative (relative to the last vertex), with optional texture and normal
// references which are ignored.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	m := mesh.New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	group := ""
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		switch fields[0] {
		case "v":
			position, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &ParseError{Format: FormatOBJ, Line: line, Err: err}
			}
			m.AddVertex(position)
		case "f":
			indices, err := parseOBJFace(fields[1:], len(m.Vertices))
			if err != nil {
				return nil, &ParseError{Format: FormatOBJ, Line: line, Err: err}
			}
			p, err := m.AddPolygon(indices...)
			if err != nil {
				return nil, &ParseError{Format: FormatOBJ, Line: line, Err: err}
			}
			p.Group = group
		case "g", "o":
			group = strings.Join(fields[1:], " ")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

func parseVec3(fields []string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		value, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return v, err
		}
		v[i] = value
	}
	return v, nil
}

func parseOBJFace(fields []string, vertexCount int) ([]int, error) {
	indices := make([]int, len(fields))
	for i, field := range fields {
		// v, v/vt, v//vn or v/vt/vn
		reference, _, _ := strings.Cut(field, "/")
		index, err := strconv.Atoi(reference)
		if err != nil {
			return nil, err
		}

		switch {
		case index > 0:
			index--
		case index < 0:
			index += vertexCount
		default:
			return nil, errors.New("face index 0 is not valid")
		}

		if index < 0 || index >= vertexCount {
			return nil, fmt.Errorf("%s: %w", field, ErrMissingIndex)
		}
		indices[i] = index
	}
	return indices, nil
}

// WriteOBJ writes vertices and faces, with a g statement whenever the group changes
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	indices := vertexIndices(m)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.Position.X()), formatFloat(v.Position.Y()), formatFloat(v.Position.Z()))
	}

	group := ""
	for _, p := range m.Polygons {
		if p.Group != group {
			group = p.Group
			fmt.Fprintf(bw, "g %s\n", group)
		}

		bw.WriteString("f")
		for _, v := range p.Vertices {
			index, ok := indices[v]
			if !ok {
				return fmt.Errorf("polygon %d: %w", p.Index, ErrMissingIndex)
			}
			fmt.Fprintf(bw, " %d", index+1)
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// vertexIndices maps each vertex to its position in m.Vertices, whatever its Index field says
func vertexIndices(m *mesh.Mesh) map[*mesh.Vertex]int {
	indices := make(map[*mesh.Vertex]int, len(m.Vertices))
	for i, v := range m.Vertices {
		indices[v] = i
	}
	return indices
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

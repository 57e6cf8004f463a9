package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/akmonengine/flatface/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

var errPLYHeader = errors.New("invalid ply header")

type plyElement struct {
	name       string
	count      int
	properties []string
	// list properties take a count followed by that many values
	lists []bool
}

func (e *plyElement) property(name string) int {
	for i, property := range e.properties {
		if property == name {
			return i
		}
	}
	return -1
}

// ReadPLY reads an ASCII PLY file. The vertex element must provide x, y and z,
// the face element a vertex_indices (or vertex_index) list. Other elements and
// properties are skipped.
func ReadPLY(r io.Reader) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	fail := func(err error) error {
		return &ParseError{Format: FormatPLY, Line: line, Err: err}
	}

	var elements []*plyElement
	magic, headerDone := false, false
	for !headerDone && scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch {
		case !magic:
			if len(fields) != 1 || fields[0] != "ply" {
				return nil, fail(errPLYHeader)
			}
			magic = true
		case fields[0] == "format":
			if len(fields) < 2 {
				return nil, fail(errPLYHeader)
			}
			if fields[1] != "ascii" {
				return nil, fail(fmt.Errorf("%s: %w", fields[1], ErrUnsupportedFormat))
			}
		case fields[0] == "element":
			if len(fields) < 3 {
				return nil, fail(errPLYHeader)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fail(errPLYHeader)
			}
			elements = append(elements, &plyElement{name: fields[1], count: count})
		case fields[0] == "property":
			if len(elements) == 0 || len(fields) < 3 {
				return nil, fail(errPLYHeader)
			}
			element := elements[len(elements)-1]
			element.properties = append(element.properties, fields[len(fields)-1])
			element.lists = append(element.lists, fields[1] == "list")
		case fields[0] == "end_header":
			headerDone = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !headerDone {
		return nil, fail(errPLYHeader)
	}

	m := mesh.New()
	for _, element := range elements {
		for i := 0; i < element.count; i++ {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, fail(io.ErrUnexpectedEOF)
			}
			line++

			values, err := splitPLYRow(element, strings.Fields(scanner.Text()))
			if err != nil {
				return nil, fail(err)
			}

			switch element.name {
			case "vertex":
				position, err := plyVertex(element, values)
				if err != nil {
					return nil, fail(err)
				}
				m.AddVertex(position)
			case "face":
				indices, err := plyFace(element, values, len(m.Vertices))
				if err != nil {
					return nil, fail(err)
				}
				if _, err := m.AddPolygon(indices...); err != nil {
					return nil, fail(err)
				}
			}
		}
	}

	return m, nil
}

// splitPLYRow groups the row values by property
func splitPLYRow(element *plyElement, fields []string) ([][]string, error) {
	values := make([][]string, len(element.properties))
	cursor := 0
	for i := range element.properties {
		if cursor >= len(fields) {
			return nil, fmt.Errorf("%s: missing %s", element.name, element.properties[i])
		}

		if !element.lists[i] {
			values[i] = fields[cursor : cursor+1]
			cursor++
			continue
		}

		count, err := strconv.Atoi(fields[cursor])
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%s: invalid list size %q", element.name, fields[cursor])
		}
		cursor++
		if cursor+count > len(fields) {
			return nil, fmt.Errorf("%s: list %s is truncated", element.name, element.properties[i])
		}
		values[i] = fields[cursor : cursor+count]
		cursor += count
	}
	return values, nil
}

func plyVertex(element *plyElement, values [][]string) (mgl64.Vec3, error) {
	var position mgl64.Vec3
	for i, axis := range []string{"x", "y", "z"} {
		property := element.property(axis)
		if property == -1 {
			return position, fmt.Errorf("vertex: missing %s property", axis)
		}
		value, err := strconv.ParseFloat(values[property][0], 64)
		if err != nil {
			return position, err
		}
		position[i] = value
	}
	return position, nil
}

func plyFace(element *plyElement, values [][]string, vertexCount int) ([]int, error) {
	property := element.property("vertex_indices")
	if property == -1 {
		property = element.property("vertex_index")
	}
	if property == -1 {
		return nil, errors.New("face: missing vertex_indices property")
	}

	indices := make([]int, len(values[property]))
	for i, value := range values[property] {
		index, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= vertexCount {
			return nil, fmt.Errorf("%d: %w", index, ErrMissingIndex)
		}
		indices[i] = index
	}
	return indices, nil
}

// plyCountType is uchar, the usual list count type, unless a ring is too long for it
func plyCountType(m *mesh.Mesh) string {
	for _, p := range m.Polygons {
		if len(p.Vertices) > math.MaxUint8 {
			return "int"
		}
	}
	return "uchar"
}

// WritePLY writes an ASCII PLY file with double precision coordinates
func WritePLY(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("ply\nformat ascii 1.0\n")
	fmt.Fprintf(bw, "element vertex %d\n", len(m.Vertices))
	bw.WriteString("property double x\nproperty double y\nproperty double z\n")
	fmt.Fprintf(bw, "element face %d\n", len(m.Polygons))
	fmt.Fprintf(bw, "property list %s int vertex_indices\nend_header\n", plyCountType(m))

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%s %s %s\n", formatFloat(v.Position.X()), formatFloat(v.Position.Y()), formatFloat(v.Position.Z()))
	}

	indices := vertexIndices(m)
	for _, p := range m.Polygons {
		bw.WriteString(strconv.Itoa(len(p.Vertices)))
		for _, v := range p.Vertices {
			index, ok := indices[v]
			if !ok {
				return fmt.Errorf("polygon %d: %w", p.Index, ErrMissingIndex)
			}
			fmt.Fprintf(bw, " %d", index)
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// Package meshio reads and writes meshes as Wavefront OBJ or ASCII PLY files.
//
// Only geometry survives a round trip: vertex positions, polygon rings and
// OBJ groups. Texture coordinates, normals and materials are dropped, since
// flattening invalidates normals anyway.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/akmonengine/flatface/mesh"
)

type Format string

const (
	FormatOBJ Format = "obj"
	FormatPLY Format = "ply"
)

var (
	// ErrUnsupportedFormat is returned for unknown extensions and binary PLY files
	ErrUnsupportedFormat = errors.New("unsupported mesh format")

	// ErrMissingIndex is returned when a face references a vertex that does not exist
	ErrMissingIndex = errors.New("face references a missing vertex")
)

// ParseError reports the line where reading failed
type ParseError struct {
	Format Format
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.Format, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ, nil
	case ".ply":
		return FormatPLY, nil
	}
	return "", fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
}

// Read decodes a mesh in the given format
func Read(r io.Reader, format Format) (*mesh.Mesh, error) {
	switch format {
	case FormatOBJ:
		return ReadOBJ(r)
	case FormatPLY:
		return ReadPLY(r)
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// Write encodes m in the given format
func Write(w io.Writer, format Format, m *mesh.Mesh) error {
	switch format {
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatPLY:
		return WritePLY(w, m)
	}
	return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// Load reads the mesh stored at path
func Load(path string) (*mesh.Mesh, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := Read(bufio.NewReader(file), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes m to path, replacing any existing file
func Save(path string, m *mesh.Mesh) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	if err := Write(w, format, m); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

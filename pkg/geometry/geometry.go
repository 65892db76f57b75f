// Package geometry holds the crystal frame: three lattice vectors and the
// named basis atoms. It converts vectors between lattice and cartesian
// coordinates.
package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Coordinate system names accepted by CoordTransform.
const (
	Lattice   = "lattice"
	Cartesian = "cartesian"
)

// Geometry is a crystal frame. Instances are immutable after construction.
type Geometry struct {
	latVecs *mat.Dense // rows are the lattice vectors
	latInv  *mat.Dense

	basisNames  []string
	basisCoords *mat.Dense // cartesian, n×3
}

// New builds a geometry from three lattice vectors given as the rows of a
// 3×3 matrix. Linearly dependent lattice vectors are rejected.
func New(latVecs *mat.Dense) (*Geometry, error) {
	r, c := latVecs.Dims()
	if r != 3 || c != 3 {
		return nil, fmt.Errorf("geometry: lattice vectors must form a 3x3 matrix, got %dx%d", r, c)
	}

	var inv mat.Dense
	err := inv.Inverse(latVecs)
	if err != nil {
		return nil, fmt.Errorf("geometry: lattice vectors are linearly dependent: %w", err)
	}

	return &Geometry{latVecs: mat.DenseCopyOf(latVecs), latInv: &inv}, nil
}

// CoordTransform converts the row vectors of vecs (n×3) from the given
// coordinate system into the other one: "lattice" yields cartesian vectors,
// "cartesian" yields lattice vectors. It is deterministic and never mutates
// vecs.
func (g *Geometry) CoordTransform(vecs *mat.Dense, from string) (*mat.Dense, error) {
	n, c := vecs.Dims()
	if c != 3 {
		return nil, fmt.Errorf("geometry: vectors must have 3 columns, got %d", c)
	}

	out := mat.NewDense(n, 3, nil)
	switch from {
	case Lattice:
		out.Mul(vecs, g.latVecs)
	case Cartesian:
		out.Mul(vecs, g.latInv)
	default:
		return nil, fmt.Errorf("geometry: unknown coordinate system %q", from)
	}

	return out, nil
}

// LatticeVectors returns a copy of the lattice vectors as rows of a 3×3
// matrix.
func (g *Geometry) LatticeVectors() *mat.Dense { return mat.DenseCopyOf(g.latVecs) }

// Basis returns the names and cartesian coordinates of the basis atoms, or
// (nil, nil) when the geometry carries no basis.
func (g *Geometry) Basis() ([]string, *mat.Dense) {
	if g.basisCoords == nil {
		return nil, nil
	}
	names := make([]string, len(g.basisNames))
	copy(names, g.basisNames)
	return names, mat.DenseCopyOf(g.basisCoords)
}

// ParseAtoms parses a multiline atom list, one "Name x y z" entry per line.
// Blank lines are skipped.
func ParseAtoms(s string) ([]string, *mat.Dense, error) {
	var (
		names []string
		data  []float64
	)

	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, nil, fmt.Errorf("geometry: atom line %q must have 4 fields, got %d", line, len(fields))
		}

		names = append(names, fields[0])
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("geometry: atom coordinate %q: %w", f, err)
			}
			data = append(data, v)
		}
	}

	if len(names) == 0 {
		return nil, nil, errors.New("geometry: no atoms given")
	}

	return names, mat.NewDense(len(names), 3, data), nil
}

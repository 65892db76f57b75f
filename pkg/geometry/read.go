package geometry

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
	"gonum.org/v1/gonum/mat"
)

type fileCfg struct {
	LatticeVectors string `toml:"geometry.lattice_vectors"`
	Basis          string `toml:"geometry.basis"`
	BasisCoordsys  string `toml:"geometry.basis_coordsys"`
}

// FromFile reads the geometry section of a TOML configuration file.
// lattice_vectors holds 9 whitespace-separated numbers, row-major. basis is
// an optional multiline atom list; its coordinates are in the system named by
// basis_coordsys ("lattice" by default, the usual fractional convention).
func FromFile(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg fileCfg
	dec := toml.NewDecoder(f)
	err = dec.Decode(&cfg)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.LatticeVectors) == "" {
		return nil, errors.New("geometry: item lattice_vectors not specified but needed")
	}

	fields := strings.Fields(cfg.LatticeVectors)
	if len(fields) != 9 {
		return nil, fmt.Errorf("geometry: lattice_vectors must have 9 elements, got %d", len(fields))
	}

	data := make([]float64, 9)
	for i, fl := range fields {
		data[i], err = strconv.ParseFloat(fl, 64)
		if err != nil {
			return nil, fmt.Errorf("geometry: lattice_vectors element %q: %w", fl, err)
		}
	}

	g, err := New(mat.NewDense(3, 3, data))
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Basis) == "" {
		return g, nil
	}

	names, coords, err := ParseAtoms(cfg.Basis)
	if err != nil {
		return nil, fmt.Errorf("basis: %w", err)
	}

	switch cfg.BasisCoordsys {
	case "", Lattice:
		coords, err = g.CoordTransform(coords, Lattice)
		if err != nil {
			return nil, fmt.Errorf("basis: %w", err)
		}
	case Cartesian:
	default:
		return nil, fmt.Errorf("geometry: unknown basis_coordsys %q", cfg.BasisCoordsys)
	}

	g.basisNames = names
	g.basisCoords = coords
	return g, nil
}

// Package cfg reads the nanocut configuration file and runs the structure
// generation pipeline: build the geometry, build the periodicity, fold the
// atoms into the periodic cell, rotate the frame onto +Z and write the
// resulting structure.
package cfg

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kpotier/nanocut/pkg/geometry"
	"github.com/kpotier/nanocut/pkg/output"
	"github.com/kpotier/nanocut/pkg/periodicity"

	"github.com/pelletier/go-toml"
	"gonum.org/v1/gonum/mat"
)

// Cfg is a structure where the parameters of a run are stored. It can be
// instanced through the New method. The geometry and periodicity sections of
// the same configuration file are decoded by their own packages.
type Cfg struct {
	FileOut     string `toml:"structure.file_out"`
	FileSummary string `toml:"structure.file_summary"`
	Atoms       string `toml:"structure.atoms"`
	Coordsys    string `toml:"structure.coordsys"`

	path string
}

// New returns an instance of the Cfg structure. It opens and reads the
// configuration file where the parameters are stored. The configuration file
// must use the TOML format.
func New(path string) (Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return Cfg{}, err
	}
	defer f.Close()

	var cfg Cfg
	dec := toml.NewDecoder(f)
	err = dec.Decode(&cfg)
	if err != nil {
		return Cfg{}, err
	}

	if cfg.FileOut == "" {
		return Cfg{}, errors.New("item structure.file_out not specified but needed")
	}

	switch cfg.Coordsys {
	case "":
		cfg.Coordsys = geometry.Cartesian
	case geometry.Lattice, geometry.Cartesian:
	default:
		return Cfg{}, fmt.Errorf("unknown structure.coordsys %q", cfg.Coordsys)
	}

	cfg.path = path
	return cfg, nil
}

// Start performs the structure generation. It is a thread blocking method.
// The atoms come from structure.atoms or, when that item is absent, from the
// geometry basis.
func (c Cfg) Start(log *log.Logger) error {
	geom, err := geometry.FromFile(c.path)
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}

	per, err := periodicity.FromFile(geom, c.path)
	if err != nil {
		return fmt.Errorf("periodicity: %w", err)
	}

	names, coords, err := c.atoms(geom)
	if err != nil {
		return err
	}

	per.ArrangePositions(coords)

	desc, coords := per.RotateCoordSys(coords)
	if desc != "" {
		log.Println(desc)
	}

	out, err := os.Create(c.FileOut)
	if err != nil {
		return err
	}
	defer out.Close()

	err = output.WriteStructure(out, names, coords, nil, desc)
	if err != nil {
		return fmt.Errorf("WriteStructure: %w", err)
	}

	if c.FileSummary != "" {
		err = output.WriteParams(c.FileSummary, c)
		if err != nil {
			return fmt.Errorf("WriteParams: %w", err)
		}
	}

	return nil
}

func (c Cfg) atoms(geom *geometry.Geometry) (names []string, coords *mat.Dense, err error) {
	if strings.TrimSpace(c.Atoms) == "" {
		names, coords = geom.Basis()
		if coords == nil {
			return nil, nil, errors.New("no atoms: set structure.atoms or geometry.basis")
		}
		return names, coords, nil
	}

	names, coords, err = geometry.ParseAtoms(c.Atoms)
	if err != nil {
		return nil, nil, fmt.Errorf("atoms: %w", err)
	}

	if c.Coordsys == geometry.Lattice {
		coords, err = geom.CoordTransform(coords, geometry.Lattice)
		if err != nil {
			return nil, nil, fmt.Errorf("atoms: %w", err)
		}
	}

	return names, coords, nil
}

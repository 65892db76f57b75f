package periodicity

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
)

type fileCfg struct {
	PeriodType string `toml:"periodicity.period_type"`
	Axis       string `toml:"periodicity.axis"`
}

// FromFile reads the periodicity section of a TOML configuration file. A
// missing section or period_type defaults to 0D. The axis is a
// whitespace-separated string of integers: 3 for 1D, 6 for 2D (row-major).
// The file must use the TOML format.
func FromFile(t CoordTransformer, path string) (*Periodicity, error) {
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

	return FromConfig(t, cfg.PeriodType, cfg.Axis)
}

// FromConfig builds a Periodicity from raw configuration strings. An empty
// periodType defaults to "0D". Errors are returned, never reported or exited
// on; the caller decides how to terminate.
func FromConfig(t CoordTransformer, periodType, axis string) (*Periodicity, error) {
	if periodType == "" {
		periodType = "0D"
	}

	pt, err := ParsePeriodType(periodType)
	if err != nil {
		return nil, err
	}
	if pt == Zero {
		return New(t, Zero, nil)
	}

	rows := 1
	if pt == Two {
		rows = 2
	}

	vecs, err := parseAxis(axis, rows)
	if err != nil {
		return nil, err
	}

	return New(t, pt, vecs)
}

func parseAxis(s string, rows int) ([][3]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: item axis not specified but needed", ErrAxisMissing)
	}

	fields := strings.Fields(s)
	if len(fields) != rows*3 {
		return nil, fmt.Errorf("%w: wrong number of elements for axis (got %d, expected %d)",
			ErrAxis, len(fields), rows*3)
	}

	vecs := make([][3]int, rows)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrAxisParse, f)
		}
		vecs[i/3][i%3] = v
	}

	return vecs, nil
}

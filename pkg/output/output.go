// Package output serializes generated structures to XYZ-style files.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml"
	"gonum.org/v1/gonum/mat"
)

// WriteStructure writes an XYZ-style structure: the number of kept atoms,
// a comment line, then one "Name x y z" line per kept atom. keep selects the
// atoms to write; a nil keep writes all of them.
func WriteStructure(w io.Writer, names []string, coords *mat.Dense, keep []bool, comment string) error {
	n, c := coords.Dims()
	if c != 3 {
		return fmt.Errorf("output: coords must have 3 columns, got %d", c)
	}
	if len(names) != n {
		return fmt.Errorf("output: %d names for %d atoms", len(names), n)
	}
	if keep != nil && len(keep) != n {
		return fmt.Errorf("output: keep mask has %d entries for %d atoms", len(keep), n)
	}

	count := n
	if keep != nil {
		count = 0
		for _, k := range keep {
			if k {
				count++
			}
		}
	}

	_, err := fmt.Fprintf(w, "%d\n%s\n", count, comment)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if keep != nil && !keep[i] {
			continue
		}

		bytes := []byte(names[i])
		row := coords.RawRowView(i)
		for k := 0; k < 3; k++ {
			bytes = append(bytes, ' ')
			bytes = strconv.AppendFloat(bytes, row[k], 'g', -1, 64)
		}
		bytes = append(bytes, '\n')

		_, err = w.Write(bytes)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteParams writes a run summary file: the date followed by the TOML
// encoding of the parameters structure.
func WriteParams(path string, params interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "Date: %v\n", time.Now().Format("2006-01-02 15:04:05 -0700 MST"))

	enc := toml.NewEncoder(f)
	err = enc.Encode(params)
	if err != nil {
		return err
	}

	_, err = f.Write([]byte{'\n'})
	return err
}

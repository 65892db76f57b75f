// Package periodicity models the periodic repetition of a generated
// structure along zero, one or two independent lattice directions. It
// validates and reduces the defining axis vectors, rotates the coordinate
// frame so the periodic direction aligns with +Z, and folds atom positions
// back into the primitive periodic cell.
package periodicity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// rotTol is the norm below which a rotation axis is considered undefined
// (the periodic direction already parallel or anti-parallel to +Z).
const rotTol = 1e-12

// CoordTransformer converts row vectors (n×3) between coordinate systems.
// The periodicity axes are given in lattice coordinates and converted once,
// at construction, with from = "lattice".
type CoordTransformer interface {
	CoordTransform(vecs *mat.Dense, from string) (*mat.Dense, error)
}

// PeriodType is the kind of periodicity: none, one lattice direction, or two
// lattice directions.
type PeriodType int

const (
	Zero PeriodType = iota
	One
	Two
)

// ParsePeriodType converts the configuration names "0D", "1D" and "2D".
func ParsePeriodType(s string) (PeriodType, error) {
	switch s {
	case "0D":
		return Zero, nil
	case "1D":
		return One, nil
	case "2D":
		return Two, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrPeriodType, s)
}

func (t PeriodType) String() string {
	switch t {
	case Zero:
		return "0D"
	case One:
		return "1D"
	case Two:
		return "2D"
	}
	return "PeriodType(" + strconv.Itoa(int(t)) + ")"
}

// Periodicity holds the kind of periodicity and, for 1D and 2D, the axis
// vectors in both lattice and cartesian coordinates. Instances are immutable
// after New; the cartesian axes are derived once and never recomputed.
//
// For 2D periodicity the two stored rows are in the reverse of the input
// order: stored row 0 is the reduced second input vector and stored row 1 the
// reduced first. Rotation and folding rely on this ordering.
type Periodicity struct {
	periodType  PeriodType
	axisLattice [][3]int   // GCD-reduced, nil for 0D
	axisCart    *mat.Dense // k×3 cartesian form, nil for 0D
}

// New validates the axis vectors for the given periodicity kind and builds a
// Periodicity. The vectors must be non-zero and, for 2D, non-parallel; each
// is reduced to the shortest collinear integer vector. All validation runs
// before the cartesian transform is invoked.
func New(t CoordTransformer, periodType PeriodType, axis [][3]int) (*Periodicity, error) {
	p := &Periodicity{periodType: periodType}

	switch periodType {
	case Zero:
		return p, nil

	case One:
		if len(axis) != 1 {
			return nil, fmt.Errorf("%w: 1D periodicity needs 1 axis vector, got %d", ErrAxis, len(axis))
		}
		if isZero(axis[0]) {
			return nil, fmt.Errorf("%w: axis vector is zero", ErrAxis)
		}
		p.axisLattice = [][3]int{reduce(axis[0])}

	case Two:
		if len(axis) != 2 {
			return nil, fmt.Errorf("%w: 2D periodicity needs 2 axis vectors, got %d", ErrAxis, len(axis))
		}
		if isZero(axis[0]) || isZero(axis[1]) {
			return nil, fmt.Errorf("%w: axis vector is zero", ErrAxis)
		}
		if isZero(crossInt(axis[0], axis[1])) {
			return nil, fmt.Errorf("%w: axis vectors are parallel", ErrAxis)
		}
		p.axisLattice = [][3]int{reduce(axis[1]), reduce(axis[0])}

	default:
		return nil, fmt.Errorf("%w: %v", ErrPeriodType, periodType)
	}

	lat := mat.NewDense(len(p.axisLattice), 3, nil)
	for i, a := range p.axisLattice {
		lat.SetRow(i, []float64{float64(a[0]), float64(a[1]), float64(a[2])})
	}

	cart, err := t.CoordTransform(lat, "lattice")
	if err != nil {
		return nil, fmt.Errorf("CoordTransform: %w", err)
	}
	p.axisCart = mat.DenseCopyOf(cart)

	return p, nil
}

// Type returns the periodicity kind.
func (p *Periodicity) Type() PeriodType { return p.periodType }

// AxisLattice returns a copy of the reduced axis vectors in lattice
// coordinates, or nil for 0D periodicity.
func (p *Periodicity) AxisLattice() [][3]int {
	if p.axisLattice == nil {
		return nil
	}
	out := make([][3]int, len(p.axisLattice))
	copy(out, p.axisLattice)
	return out
}

// AxisCart returns a copy of the axis vectors in cartesian coordinates, or
// nil for 0D periodicity.
func (p *Periodicity) AxisCart() *mat.Dense {
	if p.axisCart == nil {
		return nil
	}
	return mat.DenseCopyOf(p.axisCart)
}

// RotateCoordSys rotates the coordinate frame so the periodic direction maps
// onto +Z: the cartesian axis vector for 1D periodicity, the normal of the
// two axis vectors for 2D. It returns a description of the rotated axes and
// a new n×3 matrix of rotated coordinates; neither coords nor the stored axes
// are mutated. For 0D periodicity it returns an empty description and coords
// unchanged.
func (p *Periodicity) RotateCoordSys(coords *mat.Dense) (string, *mat.Dense) {
	var z [3]float64
	switch p.periodType {
	case One:
		z = row(p.axisCart, 0)
	case Two:
		z = cross(row(p.axisCart, 0), row(p.axisCart, 1))
	default:
		return "", coords
	}
	z = scale(z, 1/norm(z))

	// dot(z, +Z) is just the z component.
	angle := math.Acos(math.Max(-1, math.Min(1, z[2])))

	axis := cross(z, [3]float64{0, 0, 1})
	if n := norm(axis); n > rotTol {
		axis = scale(axis, 1/n)
	}
	rot := rodrigues(axis, angle)

	n, _ := coords.Dims()
	out := mat.NewDense(n, 3, nil)
	out.Mul(coords, rot.T())

	k, _ := p.axisCart.Dims()
	axes := mat.NewDense(k, 3, nil)
	axes.Mul(p.axisCart, rot.T())

	var sb strings.Builder
	sb.WriteString("Periodicity axes: ")
	for i := 0; i < k; i++ {
		sb.WriteByte('(')
		for j := 0; j < 3; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(axes.At(i, j), 'g', -1, 64))
		}
		sb.WriteString(") ")
	}

	return sb.String(), out
}

// ArrangePositions wraps every atom of coords (n×3, cartesian) into the
// fundamental periodic domain, mutating the rows in place. For 1D the integer
// number of axis lengths in each atom's projection is subtracted; for 2D each
// atom is expressed in the basis {axis0, axis1, axis0×axis1} and the floored
// in-plane fractional parts are removed, the component along the normal is
// never shifted. For 0D periodicity it is a no-op.
func (p *Periodicity) ArrangePositions(coords *mat.Dense) {
	n, _ := coords.Dims()

	switch p.periodType {
	case One:
		a := row(p.axisCart, 0)
		norm2 := dot(a, a)
		for i := 0; i < n; i++ {
			c := coords.RawRowView(i)
			ndist := math.Floor((c[0]*a[0] + c[1]*a[1] + c[2]*a[2]) / norm2)
			c[0] -= ndist * a[0]
			c[1] -= ndist * a[1]
			c[2] -= ndist * a[2]
		}

	case Two:
		a0 := row(p.axisCart, 0)
		a1 := row(p.axisCart, 1)
		nrm := cross(a0, a1)
		basis := mat.NewDense(3, 3, []float64{
			a0[0], a0[1], a0[2],
			a1[0], a1[1], a1[2],
			nrm[0], nrm[1], nrm[2],
		})

		var lu mat.LU
		lu.Factorize(basis.T())

		var frac mat.VecDense
		for i := 0; i < n; i++ {
			c := coords.RawRowView(i)
			err := lu.SolveVecTo(&frac, false, mat.NewVecDense(3, c))
			if err != nil {
				// Non-parallel axes were checked at construction; a singular
				// basis here is a broken invariant.
				panic(fmt.Sprintf("periodicity: singular fold basis: %v", err))
			}
			f0 := math.Floor(frac.AtVec(0))
			f1 := math.Floor(frac.AtVec(1))
			c[0] -= f0*a0[0] + f1*a1[0]
			c[1] -= f0*a0[1] + f1*a1[1]
			c[2] -= f0*a0[2] + f1*a1[2]
		}
	}
}

// gcd3 returns the greatest common divisor of three integers via iterated
// pairwise Euclid on the floored modulo; a zero operand leaves the other
// unchanged. The remainder takes the divisor's sign, so with negative inputs
// the result can be negative: reducing (-1,2,0) keeps the vector as is (gcd
// 1), while (4,-6,0) lands on (-2,3,0) (gcd -2).
func gcd3(a, b, c int) int {
	for b != 0 {
		a, b = b, mod(a, b)
	}
	for c != 0 {
		a, c = c, mod(a, c)
	}
	return a
}

// mod is the floored modulo: the result takes the divisor's sign.
func mod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// div is the floor division matching mod.
func div(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func reduce(v [3]int) [3]int {
	g := gcd3(v[0], v[1], v[2])
	return [3]int{div(v[0], g), div(v[1], g), div(v[2], g)}
}

func isZero(v [3]int) bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

func crossInt(a, b [3]int) [3]int {
	return [3]int{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func row(m *mat.Dense, i int) [3]float64 {
	r := m.RawRowView(i)
	return [3]float64{r[0], r[1], r[2]}
}

func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func norm(v [3]float64) float64 { return math.Sqrt(dot(v, v)) }

func scale(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// rodrigues builds the axis-angle rotation matrix around the unit vector u.
// With a zero axis it degenerates to cos(angle)·I, which covers the case of a
// direction already (anti-)parallel to +Z.
func rodrigues(u [3]float64, angle float64) *mat.Dense {
	sin, cos := math.Sin(angle), math.Cos(angle)
	c1 := 1 - cos
	return mat.NewDense(3, 3, []float64{
		cos + u[0]*u[0]*c1, u[0]*u[1]*c1 - u[2]*sin, u[0]*u[2]*c1 + u[1]*sin,
		u[1]*u[0]*c1 + u[2]*sin, cos + u[1]*u[1]*c1, u[1]*u[2]*c1 - u[0]*sin,
		u[2]*u[0]*c1 - u[1]*sin, u[2]*u[1]*c1 + u[0]*sin, cos + u[2]*u[2]*c1,
	})
}

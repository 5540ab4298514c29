// Package units implements the static unit table, metric prefix
// resolution, and dimension arithmetic used to give numeric literals a
// physical dimension.
package units

import "math"

// Dim is a 7-tuple of signed exponents over the SI base dimensions in
// fixed order: length, mass, time, electric current, temperature,
// amount of substance, luminous intensity.
type Dim struct {
	Exponents [7]int8
}

const (
	idxL = iota
	idxM
	idxT
	idxI
	idxTheta
	idxN
	idxJ
)

// Zero is the dimensionless identity.
func Zero() Dim { return Dim{} }

func dim(l, m, t, i, theta, n, j int8) Dim {
	return Dim{Exponents: [7]int8{l, m, t, i, theta, n, j}}
}

// Add returns the elementwise sum of two dimensions.
func (d Dim) Add(o Dim) Dim {
	var r Dim
	for k := range d.Exponents {
		r.Exponents[k] = d.Exponents[k] + o.Exponents[k]
	}
	return r
}

// Sub returns the elementwise difference of two dimensions.
func (d Dim) Sub(o Dim) Dim {
	var r Dim
	for k := range d.Exponents {
		r.Exponents[k] = d.Exponents[k] - o.Exponents[k]
	}
	return r
}

// Neg returns the elementwise negation of a dimension.
func (d Dim) Neg() Dim {
	var r Dim
	for k := range d.Exponents {
		r.Exponents[k] = -d.Exponents[k]
	}
	return r
}

// MulScalar scales every exponent by an integer factor.
func (d Dim) MulScalar(n int8) Dim {
	var r Dim
	for k := range d.Exponents {
		r.Exponents[k] = d.Exponents[k] * n
	}
	return r
}

// IsCompatible reports whether two dimensions are equal, i.e. whether
// values carrying them may be combined by Add/Sub/Parallel.
func (d Dim) IsCompatible(o Dim) bool { return d.Exponents == o.Exponents }

// IsZero reports whether d is the dimensionless identity.
func (d Dim) IsZero() bool { return d == Dim{} }

// Info describes one entry in the unit table: its canonical display
// name, dimension, and scale to the canonical base unit for that
// dimension (applying Scale to the literal value yields the value in
// the canonical unit).
type Info struct {
	Canonical string
	Dim       Dim
	Scale     float64
}

var table = map[string]Info{
	// SI base units.
	"m":   {"m", dim(1, 0, 0, 0, 0, 0, 0), 1},
	"kg":  {"kg", dim(0, 1, 0, 0, 0, 0, 0), 1},
	"s":   {"s", dim(0, 0, 1, 0, 0, 0, 0), 1},
	"A":   {"A", dim(0, 0, 0, 1, 0, 0, 0), 1},
	"K":   {"K", dim(0, 0, 0, 0, 1, 0, 0), 1},
	"mol": {"mol", dim(0, 0, 0, 0, 0, 1, 0), 1},
	"cd":  {"cd", dim(0, 0, 0, 0, 0, 0, 1), 1},

	// Derived units.
	"V":   {"V", dim(2, 1, -3, -1, 0, 0, 0), 1},
	"Ω":   {"Ω", dim(2, 1, -3, -2, 0, 0, 0), 1},
	"ohm": {"Ω", dim(2, 1, -3, -2, 0, 0, 0), 1},
	"F":   {"F", dim(-2, -1, 4, 2, 0, 0, 0), 1},
	"H":   {"H", dim(2, 1, -2, -2, 0, 0, 0), 1},
	"S":   {"S", dim(-2, -1, 3, 2, 0, 0, 0), 1},
	"Hz":  {"Hz", dim(0, 0, -1, 0, 0, 0, 0), 1},

	// Angle family: dimensionless, but carries a scale to radians.
	"rad": {"rad", Zero(), 1},
	"deg": {"deg", Zero(), math.Pi / 180},
	"°":   {"°", Zero(), math.Pi / 180},

	// Imperial / non-canonical length.
	"in": {"in", dim(1, 0, 0, 0, 0, 0, 0), 0.0254},
	"ft": {"ft", dim(1, 0, 0, 0, 0, 0, 0), 0.3048},
	"cm": {"m", dim(1, 0, 0, 0, 0, 0, 0), 0.01},
	"mm": {"m", dim(1, 0, 0, 0, 0, 0, 0), 0.001},
	"km": {"m", dim(1, 0, 0, 0, 0, 0, 0), 1000},
	"yd": {"yd", dim(1, 0, 0, 0, 0, 0, 0), 0.9144},
	"mi": {"mi", dim(1, 0, 0, 0, 0, 0, 0), 1609.344},

	// Time.
	"ms":  {"s", dim(0, 0, 1, 0, 0, 0, 0), 1e-3},
	"min": {"s", dim(0, 0, 1, 0, 0, 0, 0), 60},
	"hr":  {"s", dim(0, 0, 1, 0, 0, 0, 0), 3600},

	// Mass.
	"g":  {"kg", dim(0, 1, 0, 0, 0, 0, 0), 1e-3},
	"lb": {"lb", dim(0, 1, 0, 0, 0, 0, 0), 0.45359237},
	"oz": {"oz", dim(0, 1, 0, 0, 0, 0, 0), 0.028349523125},
}

// metricPrefixes is ordered longest-first so "da" is tried before "d".
var metricPrefixes = []string{
	"da", "Y", "Z", "E", "P", "T", "G", "M", "k", "h", "d", "c", "m", "u", "μ", "n", "p", "f", "a", "z", "y",
}

var prefixScale = map[string]float64{
	"Y": 1e24, "Z": 1e21, "E": 1e18, "P": 1e15, "T": 1e12, "G": 1e9, "M": 1e6,
	"k": 1e3, "h": 1e2, "da": 1e1, "d": 1e-1, "c": 1e-2, "m": 1e-3,
	"u": 1e-6, "μ": 1e-6, "n": 1e-9, "p": 1e-12, "f": 1e-15, "a": 1e-18,
	"z": 1e-21, "y": 1e-24,
}

// Lookup returns the table entry for an exact unit symbol, if any.
func Lookup(name string) (Info, bool) {
	info, ok := table[name]
	return info, ok
}

// ResolvePrefixed resolves a possibly metric-prefixed unit token. The
// direct table lookup always wins over prefix decomposition, so
// entries like "mm", "cm", "min" are unambiguous even though a
// prefix-decomposed reading ("m"+"m", "c"+"m", "m"+"in") would also
// resolve.
func ResolvePrefixed(token string) (d Dim, scale float64, canonical string, ok bool) {
	if info, found := Lookup(token); found {
		return info.Dim, info.Scale, info.Canonical, true
	}
	for _, p := range metricPrefixes {
		if len(token) <= len(p) || token[:len(p)] != p {
			continue
		}
		base := token[len(p):]
		info, found := Lookup(base)
		if !found {
			continue
		}
		ps, found := prefixScale[p]
		if !found {
			continue
		}
		return info.Dim, info.Scale * ps, info.Canonical, true
	}
	return Dim{}, 0, "", false
}

// CanonicalForDim returns a unit symbol whose dimension equals dim and
// whose scale to itself is exactly 1 (within 1e-12), for use as a
// display label when lowering a literal. Returns "", false if no such
// unit exists.
func CanonicalForDim(d Dim) (string, bool) {
	for _, info := range table {
		if info.Dim == d && math.Abs(info.Scale-1) < 1e-12 {
			return info.Canonical, true
		}
	}
	return "", false
}

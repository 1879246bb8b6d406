// Package geom holds the small amount of vector math the spawn system needs.
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec3 is a position in world space. It encodes as text ("x,y,z") in YAML
// and JSON; the mapstructure tags cover the {x, y, z} map form in config files.
type Vec3 struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

// Zero is the origin.
var Zero = Vec3{}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Length()
}

// String formats v as "x,y,z", the same form Parse accepts.
func (v Vec3) String() string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}

// Parse reads "x,y,z" or "x,y" (z = 0). Surrounding parentheses and spaces are ignored.
func Parse(s string) (Vec3, error) {
	s = strings.Trim(strings.TrimSpace(s), "()")
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return Vec3{}, fmt.Errorf("geom: want 2 or 3 components, got %d in %q", len(parts), s)
	}
	var c [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("geom: component %d of %q: %w", i, s, err)
		}
		c[i] = f
	}
	return Vec3{c[0], c[1], c[2]}, nil
}

// FromSlice builds a Vec3 from two or three components.
func FromSlice(c []float64) (Vec3, error) {
	switch len(c) {
	case 2:
		return Vec3{X: c[0], Y: c[1]}, nil
	case 3:
		return Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
	default:
		return Vec3{}, fmt.Errorf("geom: want 2 or 3 components, got %d", len(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Vec3) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Vec3) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

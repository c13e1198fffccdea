package world

import (
	"math"

	"github.com/apocgo/server/internal/core/event"
)

// Vec3 is a position in city tile space. Z is altitude.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}
func (v Vec3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Location converts to a message-log location.
func (v Vec3) Location() event.Location {
	return event.Location{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

// Vec3i is an integer tile coordinate.
type Vec3i struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

func (v Vec3i) Float() Vec3 { return Vec3{float64(v.X), float64(v.Y), float64(v.Z)} }

// Rect is a half-open 2D rectangle [P0, P1).
type Rect struct {
	X0 int `yaml:"x0"`
	Y0 int `yaml:"y0"`
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
}

// Within reports whether the point lies inside the rectangle.
func (r Rect) Within(x, y int) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Centroid returns the centre of the rectangle at ground level.
func (r Rect) Centroid() event.Location {
	return event.Location{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2, Z: 0}
}

// Area is the number of tiles covered.
func (r Rect) Area() int { return (r.X1 - r.X0) * (r.Y1 - r.Y0) }

func (r Rect) Center() Vec3 {
	return Vec3{X: float64(r.X0+r.X1) / 2, Y: float64(r.Y0+r.Y1) / 2}
}

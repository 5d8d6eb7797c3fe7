// Package geom provides the small float32 geometry types used throughout
// ember: 2D vectors, axis-aligned rectangles and 4x4 matrices.
//
// All types are plain values. Rectangles store position and size rather
// than two corners, matching how sprite destinations and texture source
// regions are specified.
package geom

import "github.com/chewxy/math32"

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float32 { return math32.Hypot(v.X, v.Y) }

// Vec3 is a 3-component vector, used for shader parameters.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a 4-component vector, used for shader parameters.
type Vec4 struct {
	X, Y, Z, W float32
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float32
}

// RectFromCorners builds a rectangle from two opposite corners.
func RectFromCorners(min, max Vec2) Rect {
	return Rect{X: min.X, Y: min.Y, W: max.X - min.X, H: max.Y - min.Y}
}

// Left returns the X coordinate of the left edge.
func (r Rect) Left() float32 { return r.X }

// Top returns the Y coordinate of the top edge.
func (r Rect) Top() float32 { return r.Y }

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.W }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Position returns the top-left corner.
func (r Rect) Position() Vec2 { return Vec2{r.X, r.Y} }

// Size returns the width and height as a vector.
func (r Rect) Size() Vec2 { return Vec2{r.W, r.H} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Offset returns the rectangle translated by (dx, dy).
func (r Rect) Offset(dx, dy float32) Rect {
	return Rect{r.X + dx, r.Y + dy, r.W, r.H}
}

// Scaled returns the rectangle with position and size scaled by s.
func (r Rect) Scaled(s float32) Rect {
	return Rect{r.X * s, r.Y * s, r.W * s, r.H * s}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math32.Min(r.X, o.X)
	top := math32.Min(r.Y, o.Y)
	right := math32.Max(r.Right(), o.Right())
	bottom := math32.Max(r.Bottom(), o.Bottom())
	return Rect{left, top, right - left, bottom - top}
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the point p lies inside r.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

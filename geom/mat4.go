package geom

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix stored in row-major order with the row-vector
// convention: a point transforms as v' = v * M, so translation lives in
// the fourth row. This matches the memory layout the sprite pipeline
// uploads to the GPU unchanged.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix translating by (x, y).
func Translation(x, y float32) Mat4 {
	m := Identity()
	m[12] = x
	m[13] = y
	return m
}

// Scaling returns a matrix scaling by (x, y).
func Scaling(x, y float32) Mat4 {
	m := Identity()
	m[0] = x
	m[5] = y
	return m
}

// Rotation returns a matrix rotating by the given angle in radians.
func Rotation(radians float32) Mat4 {
	s, c := math32.Sincos(radians)
	m := Identity()
	m[0] = c
	m[1] = s
	m[4] = -s
	m[5] = c
	return m
}

// Viewport returns the transform that maps pixel coordinates with the
// origin at the top-left of a width x height target onto clip space,
// flipping Y so that Y grows downward on screen.
func Viewport(width, height float32) Mat4 {
	return Mat4{
		2 / width, 0, 0, 0,
		0, -2 / height, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}

// Mul returns the product m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// TransformPoint applies m to the point p (w assumed 1).
func (m Mat4) TransformPoint(p Vec2) Vec2 {
	return Vec2{
		X: p.X*m[0] + p.Y*m[4] + m[12],
		Y: p.X*m[1] + p.Y*m[5] + m[13],
	}
}

// IsIdentity reports whether m is the identity matrix.
func (m Mat4) IsIdentity() bool { return m == Identity() }

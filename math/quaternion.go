package math

import "github.com/chewxy/math32"

// Quaternion is stored as (X, Y, Z, W), the layout of a vec4 quat parameter.
type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{X: 0, Y: 0, Z: 0, W: 1}
}

func QuaternionFromVec4(v Vec4) Quaternion {
	return Quaternion{X: v.X, Y: v.Y, Z: v.Z, W: v.W}
}

func (q Quaternion) Vec4() Vec4 {
	return Vec4{X: q.X, Y: q.Y, Z: q.Z, W: q.W}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

func (q Quaternion) Normalize() Quaternion {
	length := math32.Sqrt(q.Dot(q))
	if length > 0 {
		inv := 1 / length
		return Quaternion{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
	}
	return q
}

func (q Quaternion) ToMat4() Mat4 {
	xx := q.X * q.X
	yy := q.Y * q.Y
	zz := q.Z * q.Z
	xy := q.X * q.Y
	xz := q.X * q.Z
	yz := q.Y * q.Z
	wx := q.W * q.X
	wy := q.W * q.Y
	wz := q.W * q.Z

	return Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}

func (q Quaternion) Lerp(other Quaternion, t float32) Quaternion {
	return Quaternion{
		X: q.X + (other.X-q.X)*t,
		Y: q.Y + (other.Y-q.Y)*t,
		Z: q.Z + (other.Z-q.Z)*t,
		W: q.W + (other.W-q.W)*t,
	}.Normalize()
}

// Slerp takes the shortest arc and falls back to Lerp for nearly parallel
// inputs.
func (q Quaternion) Slerp(other Quaternion, t float32) Quaternion {
	dot := q.Dot(other)
	if dot < 0 {
		dot = -dot
		other = Quaternion{-other.X, -other.Y, -other.Z, -other.W}
	}
	if dot > 0.9995 {
		return q.Lerp(other, t)
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quaternion{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

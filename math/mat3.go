package math

// Mat3 follows the Mat4 layout: m[column][row].
type Mat3 [3][3]float32

func Mat3Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mat3FromMat4 keeps the upper-left 3x3 block.
func Mat3FromMat4(m Mat4) Mat3 {
	return Mat3{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

func (m Mat3) Determinant() float32 {
	return m[0][0]*(m[1][1]*m[2][2]-m[2][1]*m[1][2]) -
		m[1][0]*(m[0][1]*m[2][2]-m[2][1]*m[0][2]) +
		m[2][0]*(m[0][1]*m[1][2]-m[1][1]*m[0][2])
}

// Inverse returns the identity when m is singular.
func (m Mat3) Inverse() Mat3 {
	det := m.Determinant()
	if det == 0 {
		return Mat3Identity()
	}
	inv := 1 / det
	return Mat3{
		{
			(m[1][1]*m[2][2] - m[2][1]*m[1][2]) * inv,
			-(m[0][1]*m[2][2] - m[2][1]*m[0][2]) * inv,
			(m[0][1]*m[1][2] - m[1][1]*m[0][2]) * inv,
		},
		{
			-(m[1][0]*m[2][2] - m[2][0]*m[1][2]) * inv,
			(m[0][0]*m[2][2] - m[2][0]*m[0][2]) * inv,
			-(m[0][0]*m[1][2] - m[1][0]*m[0][2]) * inv,
		},
		{
			(m[1][0]*m[2][1] - m[2][0]*m[1][1]) * inv,
			-(m[0][0]*m[2][1] - m[2][0]*m[0][1]) * inv,
			(m[0][0]*m[1][1] - m[1][0]*m[0][1]) * inv,
		},
	}
}

func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

// NormalMatrix is the inverse-transpose of the modelview's upper-left 3x3.
func NormalMatrix(modelview Mat4) Mat3 {
	return Mat3FromMat4(modelview).Inverse().Transpose()
}

func (m Mat3) Floats() [9]float32 {
	return [9]float32{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	}
}

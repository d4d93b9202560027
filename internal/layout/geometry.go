package layout

import (
	"errors"
	"fmt"
	"math"
)

// Matrix is a 2D affine transform [a b c d e f] mapping (x, y) to
// (a*x + c*y + e, b*x + d*y + f), the same layout PDF uses for cm and Tm.
type Matrix [6]float64

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Multiply returns the transform that applies m first and then o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// ErrSingularMatrix is returned when a transform cannot be inverted.
var ErrSingularMatrix = errors.New("matrix is singular")

// Inverse returns the inverse transform.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return Matrix{}, ErrSingularMatrix
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// PageGeometry describes one rendered page: the transforms between device
// space (origin top-left, y down) and native PDF space (origin bottom-left,
// y up), and the page size in native units.
type PageGeometry struct {
	DeviceToNative Matrix
	NativeToDevice Matrix
	Width          float64
	Height         float64
}

// NewPageGeometry builds the geometry of a page with the given MediaBox
// rendered at scale. It mirrors a viewer viewport: native (llx, ury) maps to
// device (0, 0) and the vertical axis is flipped.
func NewPageGeometry(llx, lly, urx, ury, scale float64) (PageGeometry, error) {
	if scale <= 0 {
		return PageGeometry{}, fmt.Errorf("invalid scale %v", scale)
	}
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	// Move (llx, ury) to the origin, then flip y and scale.
	toDevice := Matrix{1, 0, 0, 1, -llx, -ury}.Multiply(Matrix{scale, 0, 0, -scale, 0, 0})
	toNative, err := toDevice.Inverse()
	if err != nil {
		return PageGeometry{}, err
	}
	return PageGeometry{
		DeviceToNative: toNative,
		NativeToDevice: toDevice,
		Width:          urx - llx,
		Height:         ury - lly,
	}, nil
}

package program

import "github.com/go-gl/mathgl/mgl32"

// AutoParams is the per-frame source of engine-tracked matrices.
type AutoParams struct {
	view             mgl32.Mat4
	inverseTranspose mgl32.Mat4
}

// NewAutoParams returns a source for the given view matrix.
func NewAutoParams(view mgl32.Mat4) *AutoParams {
	a := &AutoParams{}
	a.SetViewMatrix(view)
	return a
}

// SetViewMatrix updates the view matrix and its derived inverse transpose.
func (a *AutoParams) SetViewMatrix(view mgl32.Mat4) {
	a.view = view
	a.inverseTranspose = view.Inv().Transpose()
}

// ViewMatrix returns the current view matrix.
func (a *AutoParams) ViewMatrix() mgl32.Mat4 { return a.view }

// InverseTransposeViewMatrix returns the inverse transpose of the view matrix.
func (a *AutoParams) InverseTransposeViewMatrix() mgl32.Mat4 { return a.inverseTranspose }

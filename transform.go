// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package planch

import "honnef.co/go/curve"

// DirectIsometry is a rotation at the origin followed by a displacement.
// Direct isometries do not include reflections.
type DirectIsometry struct {
	// Angle in radians to rotate at the origin.
	Angle float64
	// Displacement from the origin.
	Displacement curve.Vec2
}

// Affine returns the equivalent affine transform.
func (di DirectIsometry) Affine() curve.Affine {
	return curve.Rotate(di.Angle).ThenTranslate(di.Displacement)
}

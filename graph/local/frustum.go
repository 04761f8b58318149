package local

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxelcull/graphcore/internal/simdmath"
)

// ExtractFrustum pulls the six clipping planes (left, right, bottom, top,
// near, far, in that order) out of a view-projection matrix by the
// standard Gribb/Hartmann row-combination trick, then re-expresses them
// relative to cameraWorldPos and packs them into the SoA layout
// LocalCoordContext expects: one lane per plane, one Vec6 per
// coefficient.
//
// A plane's world-space equation is A*x + B*y + C*z + D = 0. Evaluated
// at a camera-relative point (x - camX, ...), the same plane becomes
// A*x' + B*y' + C*z' + (D + A*camX + B*camY + C*camZ) = 0, so only the D
// term needs the camera offset folded in.
func ExtractFrustum(viewProj mgl32.Mat4, cameraWorldPos mgl64.Vec3) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj.At(3, 0), viewProj.At(3, 1), viewProj.At(3, 2), viewProj.At(3, 3)}.Add(
			mgl32.Vec4{viewProj.At(i, 0), viewProj.At(i, 1), viewProj.At(i, 2), viewProj.At(i, 3)},
		)
	}
	rowSub := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj.At(3, 0), viewProj.At(3, 1), viewProj.At(3, 2), viewProj.At(3, 3)}.Sub(
			mgl32.Vec4{viewProj.At(i, 0), viewProj.At(i, 1), viewProj.At(i, 2), viewProj.At(i, 3)},
		)
	}

	planes := [6]mgl32.Vec4{
		row(0),    // left
		rowSub(0), // right
		row(1),    // bottom
		rowSub(1), // top
		row(2),    // near
		rowSub(2), // far
	}

	camX, camY, camZ := float32(cameraWorldPos.X()), float32(cameraWorldPos.Y()), float32(cameraWorldPos.Z())

	var xs, ys, zs, ws simdmath.Vec6
	for i, p := range planes {
		length := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
		if length > 0 {
			p = p.Mul(1.0 / length)
		}

		xs[i], ys[i], zs[i] = p[0], p[1], p[2]
		ws[i] = p[3] + p[0]*camX + p[1]*camY + p[2]*camZ
	}

	return Frustum{
		Planes: [4]simdmath.Vec6{xs, ys, zs, ws},
		Offset: cameraWorldPos,
	}
}

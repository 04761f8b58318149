package local

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// orthoMat4 builds a symmetric OpenGL-convention orthographic projection
// (column major, the layout ExtractFrustum's At(row, col) calls assume)
// for a box x in [-right,right], y in [-top,top], z in [-near,-far]
// (camera at the origin looking down -Z). Plugging an orthographic
// projection into ExtractFrustum - rather than a perspective one - keeps
// every extracted plane's coefficients exact small fractions instead of
// trig output, so the expected values below are hand-checked, not
// approximated.
func orthoMat4(right, top, near, far float32) mgl32.Mat4 {
	sx := 1 / right
	sy := 1 / top
	sz := -2 / (far - near)
	tz := -(far + near) / (far - near)

	return mgl32.Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, tz, 1,
	}
}

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestExtractFrustumOrthographicCameraAtOrigin(t *testing.T) {
	viewProj := orthoMat4(5, 5, 1, 10)
	frustum := ExtractFrustum(viewProj, mgl64.Vec3{0, 0, 0})

	// frustum.Offset isn't checked here, only the packed coefficients.
	// Lane order is left, right, bottom, top, near, far (frustum.go).
	wantNormalX := [6]float32{1, -1, 0, 0, 0, 0}
	wantNormalY := [6]float32{0, 0, 1, -1, 0, 0}
	wantNormalZ := [6]float32{0, 0, 0, 0, -1, 1}
	wantD := [6]float32{5, 5, 5, 5, -1, 10}

	for i := 0; i < 6; i++ {
		if !almostEqual(frustum.Planes[0][i], wantNormalX[i]) {
			t.Errorf("plane %d: x = %v, want %v", i, frustum.Planes[0][i], wantNormalX[i])
		}
		if !almostEqual(frustum.Planes[1][i], wantNormalY[i]) {
			t.Errorf("plane %d: y = %v, want %v", i, frustum.Planes[1][i], wantNormalY[i])
		}
		if !almostEqual(frustum.Planes[2][i], wantNormalZ[i]) {
			t.Errorf("plane %d: z = %v, want %v", i, frustum.Planes[2][i], wantNormalZ[i])
		}
		if !almostEqual(frustum.Planes[3][i], wantD[i]) {
			t.Errorf("plane %d: d = %v, want %v", i, frustum.Planes[3][i], wantD[i])
		}
	}
}

func TestExtractFrustumFoldsCameraOffsetIntoD(t *testing.T) {
	viewProj := orthoMat4(5, 5, 1, 10)
	frustum := ExtractFrustum(viewProj, mgl64.Vec3{2, 0, 0})

	// Shifting the camera +2 along X adds normalX*2 to each plane's D
	// term (frustum.go's derivation: D' = D + A*camX + B*camY + C*camZ).
	// Left (normal x=+1): 5+2=7. Right (normal x=-1): 5-2=3. The Y/Z
	// planes have zero X component and are unaffected.
	if !almostEqual(frustum.Planes[3][0], 7) {
		t.Errorf("left plane d = %v, want 7", frustum.Planes[3][0])
	}
	if !almostEqual(frustum.Planes[3][1], 3) {
		t.Errorf("right plane d = %v, want 3", frustum.Planes[3][1])
	}
	if !almostEqual(frustum.Planes[3][2], 5) {
		t.Errorf("bottom plane d = %v, want unchanged 5", frustum.Planes[3][2])
	}
	if !almostEqual(frustum.Planes[3][4], -1) {
		t.Errorf("near plane d = %v, want unchanged -1", frustum.Planes[3][4])
	}

	if frustum.Offset != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("Offset = %v, want the camera world position unchanged", frustum.Offset)
	}
}

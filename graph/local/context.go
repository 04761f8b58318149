package local

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxelcull/graphcore/graph/visibility"
	"github.com/voxelcull/graphcore/internal/simdmath"
)

// MaxSectionViewDistance is the largest section-unit view distance the
// context can represent: iteration bounds are stored in a single byte
// per axis.
const MaxSectionViewDistance = 127

// MaxWorldHeight is the largest section-unit world height (top - bottom
// + 1) the context can represent.
const MaxWorldHeight = 254

// nodeHeightOffset shifts a signed world section Y (-128..127) into the
// unsigned [0,255] local Y space sections are packed in, matching the
// shift graph.SetSection applies to the Y it's given.
const nodeHeightOffset = 128

const level3CoordShift = 3
const level3CoordMask = 0xFF &^ ((1 << level3CoordShift) - 1)
const level3CoordLength = 1 << level3CoordShift

// regionCoordShift mirrors region.RegionIndexOf's bit widths: regions are
// 8 sections wide in X and Z, 4 in Y.
var regionCoordShift = [3]uint{3, 2, 3}

// Frustum is the external, bit-exact camera/frustum input: four 6-lane
// vectors of plane coefficients (xs, ys, zs, ws - one lane per clipping
// plane, already expressed relative to the camera) plus the camera's
// world position.
type Frustum struct {
	Planes [4]simdmath.Vec6
	Offset mgl64.Vec3
}

// LocalCoordContext is the per-frame derived state a cull-and-sort pass
// needs: the frustum in camera-relative form, the camera's position
// within the current 256^3 window, the window's iteration bounds, and
// the fog distance.
type LocalCoordContext struct {
	frustum localFrustum

	cameraCoords          mgl32.Vec3
	cameraSectionCoords   [3]uint8
	cameraUnwrappedCoords [3]int32
	cameraSectionIndex    NodeIndex[L0]

	originRegionCoords [3]int32

	fogDistanceSquared float32

	worldBottomSectionY int8
	worldTopSectionY    int8

	iterStartIndex         NodeIndex[L3]
	level3NodeIters        [3]uint8
	iterStartSectionCoords [3]uint8
}

// NewLocalCoordContext derives a frame's coordinate context from the raw
// frustum, camera position, search distance, and world Y bounds. It
// returns an error instead of the original's debug-only assertion: a
// view distance or world height outside the representable range is a
// caller contract violation, and failing fast at construction keeps
// every downstream method (including the CullAndSort hot path) free of
// error returns.
func NewLocalCoordContext(frustum Frustum, searchDistance float32, worldBottomSectionY, worldTopSectionY int8) (*LocalCoordContext, error) {
	sectionViewDistance := uint8(searchDistance / 16.0)
	if sectionViewDistance > MaxSectionViewDistance {
		return nil, fmt.Errorf("local: view distance %.1f blocks (%d sections) exceeds the maximum of %d sections",
			searchDistance, sectionViewDistance, MaxSectionViewDistance)
	}

	worldHeight := int(worldTopSectionY) - int(worldBottomSectionY) + 1
	if worldHeight > MaxWorldHeight {
		return nil, fmt.Errorf("local: world height %d sections exceeds the maximum of %d sections", worldHeight, MaxWorldHeight)
	}

	worldPos := frustum.Offset

	cameraSectionGlobal := [3]int64{
		simdmath.FloorDivInt64(int64(math.Floor(worldPos.X())), 16),
		simdmath.FloorDivInt64(int64(math.Floor(worldPos.Y())), 16),
		simdmath.FloorDivInt64(int64(math.Floor(worldPos.Z())), 16),
	}

	// X and Z address local space directly (mod 256). Y carries the
	// nodeHeightOffset shift so that a section's local Y lines up with
	// the same shift SetSection applies to the world Y it's given.
	cameraSectionCoords := [3]uint8{
		uint8(cameraSectionGlobal[0]),
		uint8(cameraSectionGlobal[1] + nodeHeightOffset),
		uint8(cameraSectionGlobal[2]),
	}
	cameraSectionIndex := PackSection(cameraSectionCoords[0], cameraSectionCoords[1], cameraSectionCoords[2])

	worldBottomNormalized := uint8(int32(worldBottomSectionY) + nodeHeightOffset)
	iterStartSectionCoords := [3]uint8{
		(cameraSectionCoords[0] - sectionViewDistance) & level3CoordMask,
		worldBottomNormalized & level3CoordMask,
		(cameraSectionCoords[2] - sectionViewDistance) & level3CoordMask,
	}
	iterStartIndex := PackNode[L3](
		iterStartSectionCoords[0]>>level3CoordShift,
		iterStartSectionCoords[1]>>level3CoordShift,
		iterStartSectionCoords[2]>>level3CoordShift,
	)

	// cameraUnwrappedCoords re-expresses the camera's own local coordinate
	// in the same continuous (possibly +256) space every other section's
	// coordinate gets unwrapped into before comparison: whenever the
	// iteration window's low edge sits past the 0/256 seam, the camera's
	// own raw coordinate reads as "before the window start" exactly like
	// any other wrapped section. Computed once here and reused by
	// originRegionCoords, cameraCoords, and every ValidDirections call for
	// the lifetime of this context instead of re-deriving it per call.
	cameraUnwrappedCoords := [3]int32{}
	for axis := 0; axis < 3; axis++ {
		cameraUnwrappedCoords[axis] = int32(cameraSectionCoords[axis])
		if cameraSectionCoords[axis] < iterStartSectionCoords[axis] {
			cameraUnwrappedCoords[axis] += 256
		}
	}

	originRegionCoords := [3]int32{}
	for axis := 0; axis < 3; axis++ {
		originRegionCoords[axis] = int32((cameraSectionGlobal[axis] - int64(cameraUnwrappedCoords[axis])) >> regionCoordShift[axis])
	}

	// the camera's own position, expressed in the same continuous
	// (possibly-unwrapped) block space node bounding boxes use: a fractional
	// part within its own section, plus that section's coordinate unwrapped
	// against the iteration window exactly like nodeLocalBounds unwraps
	// every other section. Without this, a camera sitting in a section that
	// wraps relative to the window (as it does whenever the window's low
	// edge sits past the 0/256 seam) would be compared against node
	// positions expressed 4096 blocks further along, putting the camera's
	// own section nowhere near the origin of its own bounding box.
	fractional := simdmath.RemEuclid64(worldPos, 16.0)
	var cameraCoords mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		cameraCoords[axis] = 16*float32(cameraUnwrappedCoords[axis]) + float32(fractional[axis])
	}

	// iterStartSectionCoords truncates the window's true start down to the
	// nearest level-3 boundary, which can throw away up to 7 sections of
	// the window's low end; padding the iteration count by one level-3
	// cube guarantees the truncated-and-rounded span still covers the
	// window's true high end regardless of where that truncation landed.
	viewCubeLength := sectionViewDistance*2 + 1
	level3NodeIters := [3]uint8{
		ceilDivLevel3(viewCubeLength) + 1,
		ceilDivLevel3(uint8(worldHeight)) + 1,
		ceilDivLevel3(viewCubeLength) + 1,
	}

	return &LocalCoordContext{
		frustum:                newLocalFrustum(frustum.Planes),
		cameraCoords:           cameraCoords,
		cameraSectionCoords:    cameraSectionCoords,
		cameraUnwrappedCoords:  cameraUnwrappedCoords,
		cameraSectionIndex:     cameraSectionIndex,
		originRegionCoords:     originRegionCoords,
		fogDistanceSquared:     searchDistance * searchDistance,
		worldBottomSectionY:    worldBottomSectionY,
		worldTopSectionY:       worldTopSectionY,
		iterStartIndex:         iterStartIndex,
		level3NodeIters:        level3NodeIters,
		iterStartSectionCoords: iterStartSectionCoords,
	}, nil
}

func ceilDivLevel3(length uint8) uint8 {
	return uint8((uint16(length) + level3CoordLength - 1) >> level3CoordShift)
}

func (c *LocalCoordContext) CameraSectionIndex() NodeIndex[L0] { return c.cameraSectionIndex }
func (c *LocalCoordContext) CameraSectionCoords() [3]uint8     { return c.cameraSectionCoords }
func (c *LocalCoordContext) IterStartIndex() NodeIndex[L3]     { return c.iterStartIndex }
func (c *LocalCoordContext) Level3NodeIterCounts() [3]uint8    { return c.level3NodeIters }
func (c *LocalCoordContext) OriginRegionCoords() [3]int32      { return c.originRegionCoords }

// unwrapAxis returns a section coordinate on the given axis re-expressed
// in the same continuous (non-modular) space as the iteration window:
// coordinates that lie "before" the window's start (because the window
// slid across the 0/256 seam) are pushed up by 256. Comparing two
// unwrapped coordinates with plain <=/>= then always agrees with their
// true spatial order, which is what both the bounding-box construction
// and the "which way is the camera" direction tests need across the
// wrap.
func (c *LocalCoordContext) unwrapAxis(axis int, coord uint8) int32 {
	v := int32(coord)
	if coord < c.iterStartSectionCoords[axis] {
		v += 256
	}
	return v
}

// RegionGlobalCoords computes the global region coordinates that contain
// the given local section coordinates, correctly attributing sections on
// the far side of a window-wrap seam to the region beyond the window's
// far edge rather than folding them back to the near edge.
func (c *LocalCoordContext) RegionGlobalCoords(section NodeCoords[L0]) [3]int32 {
	return [3]int32{
		c.originRegionCoords[0] + (c.unwrapAxis(0, section.X) >> regionCoordShift[0]),
		c.originRegionCoords[1] + (c.unwrapAxis(1, section.Y) >> regionCoordShift[1]),
		c.originRegionCoords[2] + (c.unwrapAxis(2, section.Z) >> regionCoordShift[2]),
	}
}

// BoundsCheckResult is the three-valued outcome of testing a node's
// bounds against a clipping volume. The three tests test_node combines
// (fog, frustum, world height) use the same encoding so they can be
// reduced with a plain min.
type BoundsCheckResult uint8

const (
	Outside BoundsCheckResult = iota
	Partial
	Inside
)

func (r BoundsCheckResult) String() string {
	switch r {
	case Outside:
		return "Outside"
	case Partial:
		return "Partial"
	case Inside:
		return "Inside"
	default:
		return "?"
	}
}

// Combine reduces two results to the more conservative of the two.
func (r BoundsCheckResult) Combine(o BoundsCheckResult) BoundsCheckResult {
	if o < r {
		return o
	}
	return r
}

func fromPassCounts(allMinimalPass, allMaximalPass bool) BoundsCheckResult {
	var n BoundsCheckResult
	if allMinimalPass {
		n++
	}
	if allMaximalPass {
		n++
	}
	return n
}

// localBoundingBox is an axis-aligned box in camera-relative local
// coordinates (blocks).
type localBoundingBox struct {
	min, max mgl32.Vec3
}

// nodeLocalBounds takes the node's coordinate at section granularity
// (already shifted up from its own level, e.g. a level-3 node's X is a
// multiple of 8) and converts it to a camera-relative box in blocks.
func nodeLocalBounds[L Level](c *LocalCoordContext, sectionX, sectionY, sectionZ uint8) localBoundingBox {
	sideLength := float32(16 * LevelLength[L]())
	const blockSize = 16

	min := mgl32.Vec3{
		blockSize*float32(c.unwrapAxis(0, sectionX)) - c.cameraCoords.X(),
		blockSize*float32(c.unwrapAxis(1, sectionY)) - c.cameraCoords.Y(),
		blockSize*float32(c.unwrapAxis(2, sectionZ)) - c.cameraCoords.Z(),
	}

	return localBoundingBox{min: min, max: min.Add(mgl32.Vec3{sideLength, sideLength, sideLength})}
}

func closestToOrigin(min, max float32) float32 {
	switch {
	case min > 0:
		return min
	case max < 0:
		return max
	default:
		return 0
	}
}

func farthestFromOrigin(min, max float32) float32 {
	if abs32(min) > abs32(max) {
		return min
	}
	return max
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// boundsInsideFog tests a horizontal (XZ) cylinder of radius
// sqrt(fogDistanceSquared) centered on the camera against the box's
// nearest and farthest in-plane corners.
func boundsInsideFog(c *LocalCoordContext, bb localBoundingBox) BoundsCheckResult {
	nearX, nearZ := closestToOrigin(bb.min.X(), bb.max.X()), closestToOrigin(bb.min.Z(), bb.max.Z())
	farX, farZ := farthestFromOrigin(bb.min.X(), bb.max.X()), farthestFromOrigin(bb.min.Z(), bb.max.Z())

	nearDistSq := nearX*nearX + nearZ*nearZ
	farDistSq := farX*farX + farZ*farZ

	return fromPassCounts(nearDistSq <= c.fogDistanceSquared, farDistSq <= c.fogDistanceSquared)
}

// boundsInsideWorldHeight tests a node's Y extent against the world's
// bottom/top section bounds, in the original signed section-Y space (the
// local coordinate's normalized uint8 reinterpreted back to int8, which
// undoes the nodeHeightOffset shift the same way it was applied).
func boundsInsideWorldHeight[L Level](c *LocalCoordContext, nodeY uint8) BoundsCheckResult {
	nodeMinY := int32(int8(nodeY - nodeHeightOffset))
	nodeMaxY := nodeMinY + int32(LevelLength[L]()) - 1

	worldMinY := int32(c.worldBottomSectionY)
	worldMaxY := int32(c.worldTopSectionY)

	minIn := nodeMinY >= worldMinY && nodeMinY <= worldMaxY
	maxIn := nodeMaxY >= worldMinY && nodeMaxY <= worldMaxY

	return fromPassCounts(minIn, maxIn)
}

// localFrustum holds the four packed plane-coefficient lanes, all
// already expressed relative to the camera.
type localFrustum struct {
	xs, ys, zs, ws simdmath.Vec6
}

func newLocalFrustum(planes [4]simdmath.Vec6) localFrustum {
	return localFrustum{xs: planes[0], ys: planes[1], zs: planes[2], ws: planes[3]}
}

// vertexAlongAxis returns the box's n-vertex and p-vertex coordinate on
// one axis for a plane whose normal component there is `normal`: the
// p-vertex maximizes the dot product with the normal, the n-vertex
// minimizes it.
func vertexAlongAxis(normal, min, max float32) (n, p float32) {
	if normal >= 0 {
		return min, max
	}
	return max, min
}

// testLocalBoundingBox tests bb against all six planes at once. If the
// n-vertex (the worst case for the box) already satisfies every plane,
// the whole box is inside the frustum - which, since the p-vertex can
// only do better, also means every p-vertex test passes. If only the
// p-vertex passes everywhere, the box straddles at least one plane.
func (f localFrustum) testLocalBoundingBox(bb localBoundingBox) BoundsCheckResult {
	var nX, nY, nZ, pX, pY, pZ simdmath.Vec6
	for i := 0; i < 6; i++ {
		nX[i], pX[i] = vertexAlongAxis(f.xs[i], bb.min.X(), bb.max.X())
		nY[i], pY[i] = vertexAlongAxis(f.ys[i], bb.min.Y(), bb.max.Y())
		nZ[i], pZ[i] = vertexAlongAxis(f.zs[i], bb.min.Z(), bb.max.Z())
	}

	nDot := simdmath.FMA(f.xs, nX, simdmath.FMA(f.ys, nY, f.zs.Mul(nZ))).Add(f.ws)
	pDot := simdmath.FMA(f.xs, pX, simdmath.FMA(f.ys, pY, f.zs.Mul(pZ))).Add(f.ws)

	const allLanesPass = 0b111111
	zero := simdmath.Vec6Splat(0)
	allNVertexPass := nDot.GeMask(zero) == allLanesPass
	allPVertexPass := pDot.GeMask(zero) == allLanesPass

	return fromPassCounts(allNVertexPass, allPVertexPass)
}

// TestNode computes the camera-relative bounds of a node and combines
// the fog, frustum, and world-height tests by taking the most
// conservative result.
func TestNode[L Level](c *LocalCoordContext, index NodeIndex[L]) BoundsCheckResult {
	sectionX, sectionY, sectionZ := index.UnpackSectionCoords()
	bb := nodeLocalBounds[L](c, sectionX, sectionY, sectionZ)

	result := boundsInsideFog(c, bb)
	result = result.Combine(c.frustum.testLocalBoundingBox(bb))
	result = result.Combine(boundsInsideWorldHeight[L](c, sectionY))
	return result
}

// ValidDirections returns the subset of the six face directions that
// lead away from the camera (or stay level with it) from the given
// section along each axis: -A when the section is at or below the
// camera's coordinate on axis A, +A when it is at or above it. The
// comparison is correct across a window-wrap seam on any axis.
func (c *LocalCoordContext) ValidDirections(section NodeCoords[L0]) visibility.GraphDirectionSet {
	var set visibility.GraphDirectionSet

	axes := [3]uint8{section.X, section.Y, section.Z}
	negDirs := [3]visibility.GraphDirection{visibility.DirNegX, visibility.DirNegY, visibility.DirNegZ}
	posDirs := [3]visibility.GraphDirection{visibility.DirPosX, visibility.DirPosY, visibility.DirPosZ}

	for axis := 0; axis < 3; axis++ {
		s := c.unwrapAxis(axis, axes[axis])
		cam := c.cameraUnwrappedCoords[axis]

		if s <= cam {
			set = set.With(negDirs[axis])
		}
		if s >= cam {
			set = set.With(posDirs[axis])
		}
	}

	return set
}

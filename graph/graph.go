// Package graph is the facade over the culling core: it owns the three
// long-lived per-section arrays (visibility connectivity, BFS incoming-
// direction accumulator, frustum/fog bit-octree) and the region staging
// area, and exposes the only two things a caller needs - section
// mutation and a per-frame cull-and-sort entry point.
package graph

import (
	"github.com/voxelcull/graphcore/graph/local"
	"github.com/voxelcull/graphcore/graph/octree"
	"github.com/voxelcull/graphcore/graph/visibility"
	"github.com/voxelcull/graphcore/internal/collections"
	"github.com/voxelcull/graphcore/region"
)

// bfsQueueMaxSize computes the worst-case number of sections a single
// visibility flood can enqueue: a player standing at the center of both
// the view distance sphere and the world height band, counting
// concentric square "rings" outward until the render distance is
// exhausted, with the top/bottom rings clipped short wherever the world
// height runs out first.
func bfsQueueMaxSize(sectionRenderDistance, worldHeight uint8) int {
	maxHeightTraversal := (int(worldHeight)+1)/2 - 1
	maxWidthTraversal := int(sectionRenderDistance)

	count := 2
	layerIndex := 1

	if maxHeightTraversal < maxWidthTraversal {
		count = 0
		layerIndex = maxWidthTraversal - maxHeightTraversal
	}

	count += 4 * (maxWidthTraversal - layerIndex) * (maxWidthTraversal + layerIndex - 1)
	count += maxWidthTraversal * 4

	return count
}

// bfsQueueSize is sized for the largest representable view distance and
// world height (local.MaxSectionViewDistance, local.MaxWorldHeight), so
// the BFS queues never need to grow once allocated.
var bfsQueueSize = bfsQueueMaxSize(local.MaxSectionViewDistance, local.MaxWorldHeight)

// Graph owns every persistent, per-section array the culling core needs
// and the transient state one cull-and-sort pass works through.
type Graph struct {
	sectionVisibility []visibility.VisibilityData
	incomingDirs      []visibility.GraphDirectionSet

	frustumFog *octree.LinearBitOctree
	staging    *region.StagingRegionRenderLists
	output     region.SortedRegionRenderLists

	readQueue  *collections.ArrayDeque[local.NodeIndex[local.L0]]
	writeQueue *collections.ArrayDeque[local.NodeIndex[local.L0]]

	logger           Logger
	sectionSetCount  uint64
	sectionDropCount uint64
}

// NewGraph allocates the three 2^24-entry arrays and the region staging
// table, with every section defaulting to fully-outgoing visibility -
// the same default set_section would give an explicitly removed
// section.
func NewGraph() *Graph {
	sectionVisibility := make([]visibility.VisibilityData, local.SectionsInGraph)
	for i := range sectionVisibility {
		sectionVisibility[i] = visibility.AllOutgoing
	}

	return &Graph{
		sectionVisibility: sectionVisibility,
		incomingDirs:      make([]visibility.GraphDirectionSet, local.SectionsInGraph),
		frustumFog:        octree.NewLinearBitOctree(),
		staging:           region.NewStagingRegionRenderLists(),
		readQueue:         collections.NewArrayDeque[local.NodeIndex[local.L0]](bfsQueueSize),
		writeQueue:        collections.NewArrayDeque[local.NodeIndex[local.L0]](bfsQueueSize),
		logger:            NewNopLogger(),
	}
}

// SetLogger replaces the Graph's logger. The default is a no-op.
func (g *Graph) SetLogger(logger Logger) {
	g.logger = logger
}

func normalizeSectionAxis(v int32) uint8 {
	return uint8(v)
}

// SetSection stores a section's visibility connectivity, given as the
// 64-bit packed row form (6 bits per row, row j at bits [6j, 6j+6)).
// Coordinates are taken mod 256 on X/Z and mod 256 after a +128 shift on
// Y, placing them in the current local window regardless of their true
// world position.
func (g *Graph) SetSection(x, y, z int32, visibilityRows uint64) {
	index := local.PackSection(
		normalizeSectionAxis(x),
		normalizeSectionAxis(y+128),
		normalizeSectionAxis(z),
	)
	g.sectionVisibility[index.ArrayIndex()] = visibility.Pack(visibilityRows)

	g.sectionSetCount++
	if g.logger.DebugEnabled() {
		g.logger.Debugf("set_section calls so far: %d", g.sectionSetCount)
	}
}

// RemoveSection resets a section to the default, fully-outgoing
// visibility - equivalent to it never having been set.
func (g *Graph) RemoveSection(x, y, z int32) {
	index := local.PackSection(
		normalizeSectionAxis(x),
		normalizeSectionAxis(y+128),
		normalizeSectionAxis(z),
	)
	g.sectionVisibility[index.ArrayIndex()] = visibility.AllOutgoing

	g.sectionDropCount++
	if g.logger.DebugEnabled() {
		g.logger.Debugf("remove_section calls so far: %d", g.sectionDropCount)
	}
}

// CullAndSort runs the frustum/fog cull, then the visibility flood, then
// drains the touched regions into the output list. The returned pointer
// is only valid until the next call: the backing slice is reused.
func (g *Graph) CullAndSort(ctx *local.LocalCoordContext, useOcclusionCulling bool) *region.SortedRegionRenderLists {
	g.output.Reset()

	counts := ctx.Level3NodeIterCounts()
	if counts[0] == 0 || counts[1] == 0 || counts[2] == 0 {
		g.logger.Warnf("cull_and_sort called with a degenerate view (zero level-3 node iterations on at least one axis)")
	}

	g.frustumAndFogCull(ctx)
	g.bfsAndOcclusionCull(ctx, useOcclusionCulling)

	g.staging.CompileRenderLists(&g.output)
	g.staging.Clear()

	// Sections that were stamped visible by the frustum/fog pass but never
	// reached by the flood (occluded from the camera) are never popped, so
	// their bits survive the per-pop clear in bfsAndOcclusionCull. A final
	// clear keeps the "all zero between calls" invariant regardless of
	// occlusion outcome.
	g.frustumFog.Clear()

	return &g.output
}

func (g *Graph) frustumAndFogCull(ctx *local.LocalCoordContext) {
	counts := ctx.Level3NodeIterCounts()

	// each axis keeps its own carry index, seeded from the row/plane it
	// branches off of: IncX/IncY only ever touch their own axis's Morton
	// bits, so reusing a single running index across all three loops
	// would leave the inner loop's Z drift baked into every subsequent
	// row instead of restarting each row at the same Z the previous one
	// did.
	xIndex := ctx.IterStartIndex()
	for x := uint8(0); x < counts[0]; x++ {
		yIndex := xIndex
		for y := uint8(0); y < counts[1]; y++ {
			zIndex := yIndex
			for z := uint8(0); z < counts[2]; z++ {
				g.checkNodeL3(ctx, zIndex)
				zIndex = zIndex.IncZ()
			}
			yIndex = yIndex.IncY()
		}
		xIndex = xIndex.IncX()
	}
}

func (g *Graph) checkNodeL3(ctx *local.LocalCoordContext, index local.NodeIndex[local.L3]) {
	switch local.TestNode(ctx, index) {
	case local.Outside:
	case local.Inside:
		octree.SetLevel3(g.frustumFog, index, true)
	case local.Partial:
		for _, child := range local.LowerNodes[local.L3, local.L2](index) {
			g.checkNodeL2(ctx, child)
		}
	}
}

func (g *Graph) checkNodeL2(ctx *local.LocalCoordContext, index local.NodeIndex[local.L2]) {
	switch local.TestNode(ctx, index) {
	case local.Outside:
	case local.Inside:
		octree.SetLevel2(g.frustumFog, index, true)
	case local.Partial:
		for _, child := range local.LowerNodes[local.L2, local.L1](index) {
			g.checkNodeL1(ctx, child)
		}
	}
}

func (g *Graph) checkNodeL1(ctx *local.LocalCoordContext, index local.NodeIndex[local.L1]) {
	switch local.TestNode(ctx, index) {
	case local.Outside:
	case local.Inside:
		octree.SetLevel1(g.frustumFog, index, true)
	case local.Partial:
		for _, child := range local.LowerNodes[local.L1, local.L0](index) {
			g.checkNodeL0(ctx, child)
		}
	}
}

func (g *Graph) checkNodeL0(ctx *local.LocalCoordContext, index local.NodeIndex[local.L0]) {
	// Outside skips; both Inside and the conservative single-section
	// Partial case stamp the one bit.
	if local.TestNode(ctx, index) != local.Outside {
		octree.SetLevel0(g.frustumFog, index, true)
	}
}

func (g *Graph) bfsAndOcclusionCull(ctx *local.LocalCoordContext, useOcclusionCulling bool) {
	directionsModifier := visibility.GraphDirectionSet(0)
	if !useOcclusionCulling {
		directionsModifier = visibility.AllDirections
	}

	readQueue, writeQueue := g.readQueue, g.writeQueue
	readQueue.Reset()
	writeQueue.Reset()

	initial := ctx.CameraSectionIndex()
	readQueue.Push(initial)
	g.incomingDirs[initial.ArrayIndex()] = visibility.AllDirections

	for {
		poppedAny := false

		for {
			nodeIndex, ok := readQueue.Pop()
			if !ok {
				break
			}
			poppedAny = true

			arrayIndex := nodeIndex.ArrayIndex()
			incoming := g.incomingDirs[arrayIndex]
			g.incomingDirs[arrayIndex] = 0

			if !octree.GetAndClearLevel0(g.frustumFog, nodeIndex) {
				continue
			}

			section := nodeIndex.Unpack()

			regionCoords := ctx.RegionGlobalCoords(section)
			g.staging.AddSection(regionCoords, section)

			outgoing := g.sectionVisibility[arrayIndex].GetOutgoingDirections(incoming)
			outgoing = outgoing.Union(directionsModifier)
			outgoing = outgoing.Intersect(ctx.ValidDirections(section))

			neighbors := nodeIndex.AllNeighbors()
			outgoing.Iterate(func(d visibility.GraphDirection) {
				neighbor := neighbors.Get(d)
				neighborIndex := neighbor.ArrayIndex()

				shouldEnqueue := g.incomingDirs[neighborIndex].IsEmpty()
				g.incomingDirs[neighborIndex] = g.incomingDirs[neighborIndex].With(d.Opposite())

				writeQueue.PushIf(neighbor, shouldEnqueue)
			})
		}

		readQueue.Reset()
		readQueue, writeQueue = writeQueue, readQueue

		if !poppedAny {
			break
		}
	}
}

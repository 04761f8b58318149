// Package region groups visible sections into fixed 8x4x8-section
// regions for draw-call batching, and keeps them in first-touch order so
// the final draw list matches the order the visibility flood discovered
// them in - nearest-to-camera first, which is also a reasonable
// front-to-back draw order.
package region

import (
	"github.com/voxelcull/graphcore/graph/local"
	"github.com/voxelcull/graphcore/internal/collections"
)

// SectionsInRegion is the section count of one region: 8 wide, 4 tall, 8
// deep.
const SectionsInRegion = 8 * 4 * 8

// RegionsInGraph is the number of regions that tile the 256x256x256
// local section window.
const RegionsInGraph = (256 / 8) * (256 / 4) * (256 / 8)

// LocalRegionIndex addresses one of the RegionsInGraph regions within the
// local coordinate window.
type LocalRegionIndex uint16

// RegionIndexOf packs a section's local coordinates down to the region
// that contains it: the top 5 bits of X, top 6 of Y (regions are half as
// tall), and top 5 of Z.
func RegionIndexOf(section local.NodeCoords[local.L0]) LocalRegionIndex {
	x := uint16(section.X>>3) << 11
	y := uint16(section.Y>>2) << 5
	z := uint16(section.Z >> 3)
	return LocalRegionIndex(x | y | z)
}

// RegionSectionIndex addresses one of the SectionsInRegion sections
// within its region.
type RegionSectionIndex uint8

// SectionIndexOf packs a section's local coordinates down to its offset
// within its own region.
func SectionIndexOf(section local.NodeCoords[local.L0]) RegionSectionIndex {
	x := uint8(section.X&0b111) << 5
	y := uint8(section.Y & 0b11)
	z := uint8(section.Z&0b111) << 2
	return RegionSectionIndex(x | y | z)
}

// undefinedRegionCoords marks a RegionRenderList that hasn't been touched
// yet this pass.
var undefinedRegionCoords = [3]int32{minInt32, minInt32, minInt32}

const minInt32 = -1 << 31

// RegionRenderList accumulates the sections touched within one region
// during a single graph search.
type RegionRenderList struct {
	regionCoords   [3]int32
	sectionIndices collections.InlineVec[RegionSectionIndex]
}

func newRegionRenderList() RegionRenderList {
	return RegionRenderList{
		regionCoords:   undefinedRegionCoords,
		sectionIndices: collections.NewInlineVec[RegionSectionIndex](SectionsInRegion),
	}
}

// RegionCoords returns the region's global (chunk-region) coordinates.
func (r *RegionRenderList) RegionCoords() [3]int32 {
	return r.regionCoords
}

// Sections returns the sections touched in this region, in touch order.
func (r *RegionRenderList) Sections() []RegionSectionIndex {
	return r.sectionIndices.Slice()
}

func (r *RegionRenderList) isInitialized() bool {
	return r.regionCoords != undefinedRegionCoords
}

func (r *RegionRenderList) initialize(regionCoords [3]int32) {
	r.regionCoords = regionCoords
}

func (r *RegionRenderList) addSection(section local.NodeCoords[local.L0]) {
	r.sectionIndices.Push(SectionIndexOf(section))
}

func (r *RegionRenderList) IsEmpty() bool {
	return r.sectionIndices.IsEmpty()
}

func (r *RegionRenderList) clear() {
	r.regionCoords = undefinedRegionCoords
	r.sectionIndices.Clear()
}

// SortedRegionRenderLists is the final, draw-ready output of a search: one
// RegionRenderList per non-empty region touched, in first-touch order.
type SortedRegionRenderLists struct {
	Regions []RegionRenderList
}

// Reset empties the list for reuse on the next frame, keeping its backing
// slice's capacity.
func (s *SortedRegionRenderLists) Reset() {
	s.Regions = s.Regions[:0]
}

func (s *SortedRegionRenderLists) push(r RegionRenderList) {
	s.Regions = append(s.Regions, r)
}

// StagingRegionRenderLists is the working area a graph search writes into
// as it visits sections: a dense, always-allocated array of one
// RegionRenderList per possible region, plus the subset actually touched
// this pass, in the order they were first touched.
type StagingRegionRenderLists struct {
	orderedRegionIndices collections.InlineVec[LocalRegionIndex]
	regionRenderLists    []RegionRenderList
}

// NewStagingRegionRenderLists allocates the full dense region table.
func NewStagingRegionRenderLists() *StagingRegionRenderLists {
	lists := make([]RegionRenderList, RegionsInGraph)
	for i := range lists {
		lists[i] = newRegionRenderList()
	}
	return &StagingRegionRenderLists{
		orderedRegionIndices: collections.NewInlineVec[LocalRegionIndex](RegionsInGraph),
		regionRenderLists:    lists,
	}
}

// TouchRegion records that the given section's region has been visited,
// registering the region (in first-touch order) the first time it is
// seen this pass, and returns that region's render list so the caller can
// add the section to it. globalRegionCoords must already account for any
// window-wrap offset on the section's coordinates - the caller (which
// holds the wrap-aware local coordinate context) computes it, since
// region lookup itself only needs the section's plain local coordinates.
func (s *StagingRegionRenderLists) TouchRegion(
	globalRegionCoords [3]int32,
	section local.NodeCoords[local.L0],
) *RegionRenderList {
	regionIndex := RegionIndexOf(section)
	renderList := &s.regionRenderLists[regionIndex]

	if !renderList.isInitialized() {
		renderList.initialize(globalRegionCoords)
		s.orderedRegionIndices.Push(regionIndex)
	}

	return renderList
}

// AddSection registers a section as visible within its region, touching
// the region first if this is its first section this pass.
func (s *StagingRegionRenderLists) AddSection(
	globalRegionCoords [3]int32,
	section local.NodeCoords[local.L0],
) {
	s.TouchRegion(globalRegionCoords, section).addSection(section)
}

// CompileRenderLists drains the touched regions, in first-touch order,
// into results - skipping any region that was stepped through during the
// flood but never actually had a visible section added to it. The pushed
// RegionRenderList shares its section-index backing storage with the
// staging table: results is only valid until the next CompileRenderLists
// or Clear call, same as the rest of a frame's transient state.
func (s *StagingRegionRenderLists) CompileRenderLists(results *SortedRegionRenderLists) {
	for _, regionIndex := range s.orderedRegionIndices.Slice() {
		renderList := &s.regionRenderLists[regionIndex]
		if !renderList.IsEmpty() {
			results.push(*renderList)
		}
	}
}

// Clear resets every region's render list for the next pass.
func (s *StagingRegionRenderLists) Clear() {
	s.orderedRegionIndices.Clear()
	for i := range s.regionRenderLists {
		s.regionRenderLists[i].clear()
	}
}

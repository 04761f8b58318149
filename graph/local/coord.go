// Package local implements the local (window-relative) coordinate system:
// the 24-bit Morton index over a 256x256x256 section window (this file),
// and the per-frame derived camera/frustum context built on top of it
// (context.go).
//
// Levels are branded at the type level the way a const generic parameter
// would brand them: Go has no const generics, so each level is a distinct
// marker type implementing Level, and NodeIndex[L] / NodeCoords[L] are
// generic over that marker. NodeIndex[L0] and NodeIndex[L3] are different
// types; the compiler refuses to alias one as the other.
package local

import "github.com/voxelcull/graphcore/graph/visibility"

// SectionsInGraph is the number of level-0 sections addressable in the
// 256x256x256 local coordinate window: one per possible 24-bit Morton
// index.
const SectionsInGraph = 1 << 24

// Level identifies one of the four node granularities: 0 (a single
// section), 1 (2x2x2 sections), 2 (4x4x4), 3 (8x8x8).
type Level interface {
	value() uint8
}

type L0 struct{}
type L1 struct{}
type L2 struct{}
type L3 struct{}

func (L0) value() uint8 { return 0 }
func (L1) value() uint8 { return 1 }
func (L2) value() uint8 { return 2 }
func (L3) value() uint8 { return 3 }

func levelValue[L Level]() uint8 {
	var l L
	return l.value()
}

// LevelLength returns the side length, in sections, of a level-L node.
func LevelLength[L Level]() int {
	return 1 << levelValue[L]()
}

// NodeCoords is a node's own coordinate, in units of its level (e.g. a
// level-3 node's coordinates range over [0, 32)).
type NodeCoords[L Level] struct {
	X, Y, Z uint8
}

// NodeIndex is the packed 24-bit Morton address of a level-L node. The
// zero value is the node at (0, 0, 0).
type NodeIndex[L Level] struct {
	raw uint32
}

// the bit-interleave masks: bit 3i+2 belongs to X, 3i+1 to Y, 3i to Z,
// for i in [0, 8) - MSB-to-LSB layout X7 Y7 Z7 X6 Y6 Z6 ... X0 Y0 Z0.
var (
	mortonXMask = spreadMask(2)
	mortonYMask = spreadMask(1)
	mortonZMask = spreadMask(0)
)

func spreadMask(shift uint) uint32 {
	var m uint32
	for i := uint(0); i < 8; i++ {
		m |= 1 << (3*i + shift)
	}
	return m
}

func spreadBits(v uint8, shift uint) uint32 {
	var r uint32
	for i := uint(0); i < 8; i++ {
		bit := uint32((v >> i) & 1)
		r |= bit << (3*i + shift)
	}
	return r
}

func gatherBits(m uint32, shift uint) uint8 {
	var r uint8
	for i := uint(0); i < 8; i++ {
		bit := (m >> (3*i + shift)) & 1
		r |= uint8(bit) << i
	}
	return r
}

func mortonPack(x, y, z uint8) uint32 {
	return spreadBits(x, 2) | spreadBits(y, 1) | spreadBits(z, 0)
}

func mortonUnpack(m uint32) (x, y, z uint8) {
	return gatherBits(m, 2), gatherBits(m, 1), gatherBits(m, 0)
}

// PackNode builds the index for the level-L node whose own (level-native)
// coordinate is (x, y, z). For L0, x/y/z are section coordinates
// directly; for higher levels they are in units of 2^L sections.
func PackNode[L Level](x, y, z uint8) NodeIndex[L] {
	level := levelValue[L]()
	return NodeIndex[L]{raw: mortonPack(x<<level, y<<level, z<<level)}
}

// PackSection is the common case of PackNode for level 0.
func PackSection(x, y, z uint8) NodeIndex[L0] {
	return PackNode[L0](x, y, z)
}

// UnpackSectionCoords returns the full section-space (level-0 granularity)
// coordinates of the node's anchor corner.
func (n NodeIndex[L]) UnpackSectionCoords() (x, y, z uint8) {
	return mortonUnpack(n.raw)
}

// Unpack returns the node's own (level-native) coordinate.
func (n NodeIndex[L]) Unpack() NodeCoords[L] {
	level := levelValue[L]()
	x, y, z := n.UnpackSectionCoords()
	return NodeCoords[L]{X: x >> level, Y: y >> level, Z: z >> level}
}

func axisStep[L Level](raw, mask uint32, add bool) uint32 {
	level := levelValue[L]()
	axisOne := mask & 0b111
	addend := axisOne << (level * 3)

	if add {
		masked := raw | ^mask
		masked += addend
		return (raw &^ mask) | (masked & mask)
	}

	masked := raw & mask
	masked -= addend
	return (raw &^ mask) | (masked & mask)
}

func (n NodeIndex[L]) IncX() NodeIndex[L] { return NodeIndex[L]{raw: axisStep[L](n.raw, mortonXMask, true)} }
func (n NodeIndex[L]) IncY() NodeIndex[L] { return NodeIndex[L]{raw: axisStep[L](n.raw, mortonYMask, true)} }
func (n NodeIndex[L]) IncZ() NodeIndex[L] { return NodeIndex[L]{raw: axisStep[L](n.raw, mortonZMask, true)} }
func (n NodeIndex[L]) DecX() NodeIndex[L] { return NodeIndex[L]{raw: axisStep[L](n.raw, mortonXMask, false)} }
func (n NodeIndex[L]) DecY() NodeIndex[L] { return NodeIndex[L]{raw: axisStep[L](n.raw, mortonYMask, false)} }
func (n NodeIndex[L]) DecZ() NodeIndex[L] { return NodeIndex[L]{raw: axisStep[L](n.raw, mortonZMask, false)} }

// ArrayIndex returns the low 24 bits as an offset into a
// SectionsInGraph-sized array. It is always in range by construction: the
// top 8 bits of raw are never set.
func (n NodeIndex[L]) ArrayIndex() int {
	return int(n.raw)
}

// CompactIndex divides out the low zero bits a level-L node's raw index
// always has (it represents a 2^L-section cube, so its Morton address is
// a multiple of 2^(3L)), yielding a dense index into an array sized for
// this level alone - 1/8th the length of the level below it.
func (n NodeIndex[L]) CompactIndex() int {
	return int(n.raw >> (3 * levelValue[L]()))
}

// Neighbors holds the six face-adjacent node indices of a node, in
// GraphDirection order.
type Neighbors[L Level] struct {
	byDirection [6]NodeIndex[L]
}

func (n NodeIndex[L]) AllNeighbors() Neighbors[L] {
	return Neighbors[L]{byDirection: [6]NodeIndex[L]{
		n.DecX(), n.DecY(), n.DecZ(),
		n.IncX(), n.IncY(), n.IncZ(),
	}}
}

func (nb Neighbors[L]) Get(d visibility.GraphDirection) NodeIndex[L] {
	return nb.byDirection[d]
}

// LowerNodes splits a level-L node into its 8 level-(L-1) children, in
// the same raw-bit-reinterpretation way the original's LowerNodeIter did:
// the children share the parent's Morton bits, stepping by the child
// level's cube size. The caller is responsible for passing a (L, LL) pair
// where LL is exactly one level below L - Go generics can't express that
// relationship as a compile-time constraint.
func LowerNodes[L Level, LL Level](n NodeIndex[L]) [8]NodeIndex[LL] {
	childLevel := levelValue[LL]()
	step := uint32(1) << (3 * childLevel)

	var out [8]NodeIndex[LL]
	cur := n.raw
	for i := range out {
		out[i] = NodeIndex[LL]{raw: cur}
		cur += step
	}
	return out
}

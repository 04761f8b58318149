package octree

import (
	"testing"

	"github.com/voxelcull/graphcore/graph/local"
)

func TestLevel0SetGetAndClear(t *testing.T) {
	o := NewLinearBitOctree()
	idx := local.PackSection(10, 20, 30)

	SetLevel0(o, idx, true)
	if !GetAndClearLevel0(o, idx) {
		t.Fatal("expected bit to be set after SetLevel0(true)")
	}
	if GetAndClearLevel0(o, idx) {
		t.Fatal("GetAndClearLevel0 should clear the bit on read")
	}
}

func TestLevel0DoesNotDisturbNeighbors(t *testing.T) {
	o := NewLinearBitOctree()
	a := local.PackSection(0, 0, 0)
	b := local.PackSection(0, 0, 1)

	SetLevel0(o, a, true)
	if GetAndClearLevel0(o, b) {
		t.Fatal("setting section a should not set section b")
	}
}

func TestLevel1WholeByte(t *testing.T) {
	o := NewLinearBitOctree()
	idx := local.PackNode[local.L1](1, 2, 3)

	SetLevel1(o, idx, true)
	if !GetAndClearLevel1(o, idx) {
		t.Fatal("expected level-1 node to report fully set")
	}
	if GetAndClearLevel1(o, idx) {
		t.Fatal("level-1 node should be fully cleared after GetAndClearLevel1")
	}
}

func TestLevel1PartiallySetIsNotAllSet(t *testing.T) {
	o := NewLinearBitOctree()
	parent := local.PackNode[local.L1](0, 0, 0)
	children := local.LowerNodes[local.L1, local.L0](parent)

	SetLevel0(o, children[0], true)
	if GetAndClearLevel1(o, parent) {
		t.Fatal("a level-1 node with only one of 8 sections set should not report fully set")
	}
}

func TestLevel2And3WholeChunk(t *testing.T) {
	o := NewLinearBitOctree()

	l2 := local.PackNode[local.L2](0, 1, 0)
	SetLevel2(o, l2, true)
	if !GetAndClearLevel2(o, l2) {
		t.Fatal("expected level-2 node to report fully set")
	}
	if GetAndClearLevel2(o, l2) {
		t.Fatal("level-2 node should be fully cleared after GetAndClearLevel2")
	}

	l3 := local.PackNode[local.L3](2, 0, 0)
	SetLevel3(o, l3, true)
	if !GetAndClearLevel3(o, l3) {
		t.Fatal("expected level-3 node to report fully set")
	}
	if GetAndClearLevel3(o, l3) {
		t.Fatal("level-3 node should be fully cleared after GetAndClearLevel3")
	}
}

func TestClearResetsEverything(t *testing.T) {
	o := NewLinearBitOctree()
	idx := local.PackSection(5, 5, 5)
	SetLevel0(o, idx, true)
	o.Clear()
	if GetAndClearLevel0(o, idx) {
		t.Fatal("Clear should reset every bit")
	}
}

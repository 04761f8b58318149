package local

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	for x := 0; x < 256; x += 17 {
		for y := 0; y < 256; y += 23 {
			for z := 0; z < 256; z += 29 {
				n := PackSection(uint8(x), uint8(y), uint8(z))
				if n.raw >= SectionsInGraph {
					t.Fatalf("pack(%d,%d,%d) = %d, out of range", x, y, z, n.raw)
				}
				got := n.Unpack()
				if int(got.X) != x || int(got.Y) != y || int(got.Z) != z {
					t.Errorf("unpack(pack(%d,%d,%d)) = (%d,%d,%d)", x, y, z, got.X, got.Y, got.Z)
				}
			}
		}
	}
}

func TestPackUnpackCorners(t *testing.T) {
	cases := [][3]uint8{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	for _, c := range cases {
		n := PackSection(c[0], c[1], c[2])
		got := n.Unpack()
		if got.X != c[0] || got.Y != c[1] || got.Z != c[2] {
			t.Errorf("unpack(pack(%v)) = %v", c, got)
		}
	}
}

func TestAxisStepInverses(t *testing.T) {
	n := PackSection(10, 20, 30)

	if got := n.IncX().DecX(); got != n {
		t.Errorf("dec_x(inc_x(n)) != n: got %+v want %+v", got, n)
	}
	if got := n.DecX().IncX(); got != n {
		t.Errorf("inc_x(dec_x(n)) != n: got %+v want %+v", got, n)
	}
	if got := n.IncY().DecY(); got != n {
		t.Errorf("dec_y(inc_y(n)) != n: got %+v want %+v", got, n)
	}
	if got := n.IncZ().DecZ(); got != n {
		t.Errorf("dec_z(inc_z(n)) != n: got %+v want %+v", got, n)
	}
}

func TestAxisStepWraps(t *testing.T) {
	n := PackSection(255, 10, 10)
	got := n.IncX().Unpack()
	if got.X != 0 {
		t.Errorf("inc_x at x=255 should wrap to 0, got %d", got.X)
	}

	n = PackSection(0, 10, 10)
	got = n.DecX().Unpack()
	if got.X != 255 {
		t.Errorf("dec_x at x=0 should wrap to 255, got %d", got.X)
	}
}

func TestAxisStepLeavesOtherAxesAlone(t *testing.T) {
	n := PackSection(100, 150, 200)
	stepped := n.IncX()
	x, y, z := stepped.UnpackSectionCoords()
	if x != 101 || y != 150 || z != 200 {
		t.Errorf("IncX changed more than X: got (%d,%d,%d)", x, y, z)
	}
}

func TestAllNeighborsMatchesIndividualSteps(t *testing.T) {
	n := PackSection(50, 60, 70)
	nb := n.AllNeighbors()

	want := []NodeIndex[L0]{n.DecX(), n.DecY(), n.DecZ(), n.IncX(), n.IncY(), n.IncZ()}
	for d := 0; d < 6; d++ {
		if nb.byDirection[d] != want[d] {
			t.Errorf("neighbor %d: got %+v want %+v", d, nb.byDirection[d], want[d])
		}
	}
}

func TestArrayIndexInRange(t *testing.T) {
	for _, c := range [][3]uint8{{0, 0, 0}, {255, 255, 255}, {123, 45, 67}} {
		n := PackSection(c[0], c[1], c[2])
		idx := n.ArrayIndex()
		if idx < 0 || idx >= SectionsInGraph {
			t.Errorf("ArrayIndex(%v) = %d, out of [0, %d)", c, idx, SectionsInGraph)
		}
	}
}

func TestCompactIndexLevel3(t *testing.T) {
	a := PackNode[L3](0, 0, 0)
	b := PackNode[L3](0, 0, 1)
	if a.CompactIndex() == b.CompactIndex() {
		t.Errorf("distinct level-3 nodes must have distinct compact indices")
	}
}

func TestLowerNodesCoverChildren(t *testing.T) {
	parent := PackNode[L1](3, 4, 5)
	children := LowerNodes[L1, L0](parent)

	seen := map[NodeIndex[L0]]bool{}
	for _, c := range children {
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct children, got %d", len(seen))
	}

	for dx := uint8(0); dx < 2; dx++ {
		for dy := uint8(0); dy < 2; dy++ {
			for dz := uint8(0); dz < 2; dz++ {
				want := PackSection(3*2+dx, 4*2+dy, 5*2+dz)
				if !seen[want] {
					t.Errorf("missing expected child at offset (%d,%d,%d)", dx, dy, dz)
				}
			}
		}
	}
}

func TestLevelLength(t *testing.T) {
	if LevelLength[L0]() != 1 {
		t.Errorf("L0 length = %d, want 1", LevelLength[L0]())
	}
	if LevelLength[L3]() != 8 {
		t.Errorf("L3 length = %d, want 8", LevelLength[L3]())
	}
}

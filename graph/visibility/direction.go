// Package visibility holds the section-to-section connectivity datum the
// BFS flood walks: which of the six face directions a ray can pass through
// a section on, packed into a 15-bit triangular table per section.
package visibility

// GraphDirection enumerates the six cube-face directions a BFS step can
// move in. The numeric order matches local.NodeIndex's AllNeighbors: the
// three negative axes, then the three positive ones.
type GraphDirection uint8

const (
	DirNegX GraphDirection = iota
	DirNegY
	DirNegZ
	DirPosX
	DirPosY
	DirPosZ
)

// directionCount is the number of face directions, and the width of a
// GraphDirectionSet.
const directionCount = 6

// Opposite returns the direction a ray would travel back along, e.g.
// DirNegX for DirPosX.
func (d GraphDirection) Opposite() GraphDirection {
	return (d + 3) % directionCount
}

func (d GraphDirection) String() string {
	switch d {
	case DirNegX:
		return "-X"
	case DirNegY:
		return "-Y"
	case DirNegZ:
		return "-Z"
	case DirPosX:
		return "+X"
	case DirPosY:
		return "+Y"
	case DirPosZ:
		return "+Z"
	default:
		return "?"
	}
}

// GraphDirectionSet is a bitmask over the six GraphDirection values, used
// both for "which neighbors does visibility pass out of this section to" and
// for the "incoming" direction accumulator the BFS keeps per section.
type GraphDirectionSet uint8

// AllDirections contains every face direction.
const AllDirections GraphDirectionSet = (1 << directionCount) - 1

func DirectionSetOf(dirs ...GraphDirection) GraphDirectionSet {
	var s GraphDirectionSet
	for _, d := range dirs {
		s = s.With(d)
	}
	return s
}

func (s GraphDirectionSet) With(d GraphDirection) GraphDirectionSet {
	return s | (1 << d)
}

func (s GraphDirectionSet) Without(d GraphDirection) GraphDirectionSet {
	return s &^ (1 << d)
}

func (s GraphDirectionSet) Contains(d GraphDirection) bool {
	return s&(1<<d) != 0
}

func (s GraphDirectionSet) IsEmpty() bool {
	return s == 0
}

func (s GraphDirectionSet) Union(o GraphDirectionSet) GraphDirectionSet {
	return s | o
}

func (s GraphDirectionSet) Intersect(o GraphDirectionSet) GraphDirectionSet {
	return s & o
}

// Iterate calls fn for every direction present in the set, in GraphDirection
// order.
func (s GraphDirectionSet) Iterate(fn func(GraphDirection)) {
	for d := GraphDirection(0); d < directionCount; d++ {
		if s.Contains(d) {
			fn(d)
		}
	}
}

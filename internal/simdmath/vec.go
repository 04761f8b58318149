// Package simdmath supplies the small amount of vector math the graph core
// needs on top of mathgl: a fixed 6-lane vector for per-plane frustum tests
// (mathgl has no native 6-vector type), fused-multiply-add and masked
// comparison over that vector, and the floor-division/remainder helpers
// the window-wrap coordinate math needs but Go's built-in % doesn't give.
package simdmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec6 holds one value per frustum clipping plane: lane i belongs to
// plane i, in whatever plane order the caller packed them.
type Vec6 [6]float32

func Vec6Splat(v float32) Vec6 {
	return Vec6{v, v, v, v, v, v}
}

func (v Vec6) Add(o Vec6) Vec6 {
	var r Vec6
	for i := range v {
		r[i] = v[i] + o[i]
	}
	return r
}

func (v Vec6) Mul(o Vec6) Vec6 {
	var r Vec6
	for i := range v {
		r[i] = v[i] * o[i]
	}
	return r
}

// FMA returns a*b + c, lane-wise.
func FMA(a, b, c Vec6) Vec6 {
	var r Vec6
	for i := range a {
		r[i] = float32(math.FMA(float64(a[i]), float64(b[i]), float64(c[i])))
	}
	return r
}

// GeMask returns a bitmask with bit i set when v[i] >= o[i].
func (v Vec6) GeMask(o Vec6) uint8 {
	var mask uint8
	for i := range v {
		if v[i] >= o[i] {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// RemEuclid64 returns v mod m, lane-wise, always non-negative for m > 0 -
// unlike Go's %, which keeps the sign of the dividend.
func RemEuclid64(v mgl64.Vec3, m float64) mgl64.Vec3 {
	rem := func(x float64) float64 {
		r := math.Mod(x, m)
		if r < 0 {
			r += math.Abs(m)
		}
		return r
	}
	return mgl64.Vec3{rem(v.X()), rem(v.Y()), rem(v.Z())}
}

// FloorDivInt64 performs Euclidean (floor) division of an int64 by a positive
// power-of-two divisor, used to derive section coordinates from world
// block coordinates without the sign bugs of truncating division.
func FloorDivInt64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Clamp functions for common value ranges

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// Angle normalization functions

// normalizeAngle wraps an angle to [-Pi, Pi].
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle+math.Pi, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle - math.Pi
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}

// NormalizeHeading wraps a heading to [0, 2*Pi).
func NormalizeHeading(h float64) float64 {
	return normalizeHeading(h)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// Direction functions

// headingTo returns the heading in radians from a to b, ignoring depth.
func headingTo(a, b r3.Vec) float64 {
	return normalizeHeading(math.Atan2(b.X-a.X, b.Z-a.Z))
}

// BearingDeg returns the compass bearing in degrees [0, 360) from a to b.
func BearingDeg(a, b r3.Vec) float64 {
	d := rad2deg(headingTo(a, b))
	if d >= 360 {
		d -= 360
	}
	return d
}

// distance returns the 3D distance between two points.
func distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// angleOff returns the unsigned angle in radians between unit vectors a and b.
func angleOff(a, b r3.Vec) float64 {
	return math.Acos(clamp(r3.Dot(a, b), -1, 1))
}

// unitOr returns the unit vector of v, or fallback when v is zero-length.
func unitOr(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < 1e-9 {
		return fallback
	}
	return r3.Scale(1/n, v)
}

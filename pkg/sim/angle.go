package sim

import "math"

// Angle is an orientation in radians, normalized to (-Pi, Pi].
type Angle float64

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return AngleFromRadians(d * math.Pi / 180)
}

// AngleFromRadians creates Angle from radians.
func AngleFromRadians(r float64) Angle {
	r = math.Mod(r, 2*math.Pi)
	switch {
	case r > math.Pi:
		r -= 2 * math.Pi
	case r <= -math.Pi:
		r += 2 * math.Pi
	}
	return Angle(r)
}

// AddRadians adds radians to current angle.
func (a Angle) AddRadians(r float64) Angle {
	return AngleFromRadians(float64(a) + r)
}

// Opposite is the angle pointing backwards.
func (a Angle) Opposite() Angle {
	return a.AddRadians(math.Pi)
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// Cos wraps math.Cos.
func (a Angle) Cos() float64 {
	return math.Cos(float64(a))
}

// Sin wraps math.Sin.
func (a Angle) Sin() float64 {
	return math.Sin(float64(a))
}

// Project projects distance into X and Y.
func (a Angle) Project(dist float64) Pos2D {
	return Pos2D{X: dist * a.Cos(), Y: dist * a.Sin()}
}

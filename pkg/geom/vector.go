package geom

import "math"

// Vec2 is a 2D point/vector in track units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

func (a Vec2) Scale(f float64) Vec2 {
	return Vec2{a.X * f, a.Y * f}
}

func (a Vec2) Mag() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

func (a Vec2) Dist(b Vec2) float64 {
	return a.Sub(b).Mag()
}

func (a Vec2) Normalize() Vec2 {
	mag := a.Mag()
	if mag > 0 {
		return a.Scale(1 / mag)
	}
	return a
}

// HeadingVec returns the unit vector for a heading given in degrees
// (0° points along +X, 90° along +Y).
func HeadingVec(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	return Vec2{math.Cos(rad), math.Sin(rad)}
}

// AngleDeg returns the angle between a and b in degrees, range [0,180].
func AngleDeg(a, b Vec2) float64 {
	return math.Abs(SignedAngleDeg(a, b))
}

// SignedAngleDeg returns the signed angle from a to b in degrees,
// range (-180,180]. Positive means b lies counter-clockwise of a.
func SignedAngleDeg(a, b Vec2) float64 {
	cross := a.X*b.Y - a.Y*b.X
	dot := a.X*b.X + a.Y*b.Y
	return math.Atan2(cross, dot) * 180 / math.Pi
}

func Clamp(v, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, v))
}

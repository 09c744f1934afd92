// Package fitness scores decoded configurations by running the simulation
// against a standardized layout and reducing orbital-geometry metrics to a
// scalar.
package fitness

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/orrery/physics"
)

// BodySample is one position/velocity observation of a single body.
type BodySample struct {
	Pos physics.Vec2
	Vel physics.Vec2
}

// Metrics are the orbital-geometry measurements of one body's sample
// series around a center point.
type Metrics struct {
	// RadialVariance is variance(r) normalized by mean(r)^2; 0 for a
	// perfectly circular orbit.
	RadialVariance float64
	// TangentialRatio is the mean per-sample ratio of tangential to total
	// speed; 1 for pure circular motion.
	TangentialRatio float64
	// Turns is the number of completed revolutions, from summed absolute
	// unwrapped angle deltas.
	Turns float64
}

// ComputeMetrics reduces a sample series around center. It is a pure
// function; series with fewer than two usable samples yield zero metrics.
func ComputeMetrics(samples []BodySample, center physics.Vec2) Metrics {
	var m Metrics
	if len(samples) < 2 {
		return m
	}

	radii := make([]float64, 0, len(samples))
	var ratioSum float64
	var ratioN int
	var angleSum float64
	var prevTheta float64
	havePrev := false

	for _, s := range samples {
		d := s.Pos.Sub(center)
		r := d.Len()
		radii = append(radii, r)

		theta := math.Atan2(d.Y, d.X)
		if havePrev {
			// Raw deltas double-count every crossing of the +-pi seam;
			// fold each one into (-pi, pi] before summing.
			angleSum += math.Abs(wrapPi(theta - prevTheta))
		}
		prevTheta = theta
		havePrev = true

		speed := s.Vel.Len()
		if r < physics.Epsilon || speed < physics.Epsilon {
			continue
		}
		vr := s.Vel.Dot(d.Scale(1 / r))
		vt := math.Sqrt(math.Max(0, speed*speed-vr*vr))
		ratioSum += vt / speed
		ratioN++
	}

	meanR := stat.Mean(radii, nil)
	if meanR > physics.Epsilon {
		m.RadialVariance = stat.Variance(radii, nil) / (meanR * meanR)
	}
	if ratioN > 0 {
		m.TangentialRatio = ratioSum / float64(ratioN)
	}
	m.Turns = angleSum / (2 * math.Pi)
	return m
}

// wrapPi folds an angle delta into (-pi, pi].
func wrapPi(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

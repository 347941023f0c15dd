// Package terrain provides the procedural seabed and thermocline oracle.
package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/silentrun/config"
)

// seabedOctaves is the number of noise octaves summed for the seabed.
const seabedOctaves = 3

// thermalOffset separates the thermocline noise from the seabed noise.
const thermalOffset = 7919.0

// Field is a deterministic seabed height and thermal-layer field.
type Field struct {
	cfg      config.TerrainConfig
	maxDepth float64
	noise    opensimplex.Noise
}

// New creates a field for a seed. maxDepth caps the seabed depth.
func New(cfg config.TerrainConfig, maxDepth float64, seed int64) *Field {
	return &Field{
		cfg:      cfg,
		maxDepth: maxDepth,
		noise:    opensimplex.New(seed),
	}
}

// SeabedDepth returns the seabed depth at (x, z).
func (f *Field) SeabedDepth(x, z float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, f.cfg.SeabedScale
	for i := 0; i < seabedOctaves; i++ {
		sum += amp * f.noise.Eval2(x*freq, z*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	d := f.cfg.SeabedDepth + f.cfg.SeabedAmplitude*sum/norm
	if f.maxDepth > 0 {
		d = math.Min(d, f.maxDepth)
	}
	return math.Max(d, 0)
}

// ThermalLayerDepth returns the thermocline depth at (x, z).
func (f *Field) ThermalLayerDepth(x, z float64) float64 {
	n := f.noise.Eval2(x*f.cfg.ThermalScale+thermalOffset, z*f.cfg.ThermalScale+thermalOffset)
	return math.Max(0, f.cfg.ThermalLayerDepth+f.cfg.ThermalAmplitude*n)
}

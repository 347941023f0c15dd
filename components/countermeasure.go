package components

import "gonum.org/v1/gonum/spatial/r3"

// CountermeasureKind identifies a decoy source.
type CountermeasureKind uint8

const (
	CMKnuckle CountermeasureKind = iota
	CMNoisemaker
	CMMine
)

var cmNames = [...]string{"knuckle", "noisemaker", "mine"}

func (k CountermeasureKind) String() string {
	if int(k) >= len(cmNames) {
		return "unknown"
	}
	return cmNames[k]
}

// Countermeasure is a stationary acoustic object: a knuckle, a noisemaker or a mine.
// Mines have zero Lifetime and never decay.
type Countermeasure struct {
	ID        uint32
	Kind      CountermeasureKind
	OwnerID   uint32
	Team      int
	Pos       r3.Vec
	Remaining float64
	Lifetime  float64
	Strength  float64 // initial decoy strength
	Noise     float64 // initial noise level
}

// Fraction returns the remaining share of the countermeasure's effect.
func (c *Countermeasure) Fraction() float64 {
	if c.Lifetime <= 0 {
		return 1
	}
	if c.Remaining <= 0 {
		return 0
	}
	return c.Remaining / c.Lifetime
}

// DecoyStrength returns the current decoy strength.
func (c *Countermeasure) DecoyStrength() float64 {
	return c.Strength * c.Fraction()
}

// CurrentNoise returns the current noise contribution.
func (c *Countermeasure) CurrentNoise() float64 {
	return c.Noise * c.Fraction()
}

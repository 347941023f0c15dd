package systems

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// Observer describes the vessel performing a sweep.
type Observer struct {
	ID          uint32
	Team        int
	Pos         r3.Vec
	Heading     float64
	Speed       float64 // knots
	MaxSpeed    float64 // knots
	SensorRatio float64 // sensor performance factor, 1 when undamaged
	TowedArray  bool
}

// DetectionEngine turns target signatures into sensor contacts.
// Candidates are indexed once per tick with Index, then any number of sweeps
// read the index.
type DetectionEngine struct {
	cfg        config.SonarConfig
	grid       *SpatialGrid
	candidates []Target
	scratch    []Neighbor
}

// NewDetectionEngine creates a detection engine whose spatial index covers the given world.
func NewDetectionEngine(cfg config.SonarConfig, halfWidth, cellSize float64) *DetectionEngine {
	return &DetectionEngine{
		cfg:     cfg,
		grid:    NewSpatialGrid(halfWidth, cellSize),
		scratch: make([]Neighbor, 0, 32),
	}
}

// Index replaces the candidate set for subsequent sweeps.
func (e *DetectionEngine) Index(candidates []Target) {
	e.grid.Clear()
	e.candidates = append(e.candidates[:0], candidates...)
	for i, t := range e.candidates {
		p := t.Position()
		e.grid.Insert(i, p.X, p.Z)
	}
}

// NominalRange returns the unmodified detection range for a mode.
func (e *DetectionEngine) NominalRange(mode components.SonarMode, sensorRatio float64) float64 {
	r := e.cfg.PassiveRange
	if mode == components.SonarActive {
		r = e.cfg.ActiveRange
	}
	return r * clamp01(sensorRatio)
}

// ActiveSensitivity returns the fixed active-sonar sensitivity.
func (e *DetectionEngine) ActiveSensitivity() float64 {
	return e.cfg.ActiveSensitivity
}

// PassiveSensitivity returns listening sensitivity for a vessel at the given speed.
// Flow noise degrades it super-linearly with speed; a deployed towed array
// multiplies it with a benefit that fades to nothing at the array's speed limit.
func (e *DetectionEngine) PassiveSensitivity(speed, maxSpeed float64, towed bool) float64 {
	c := e.cfg
	frac := 0.0
	if maxSpeed > 0 {
		frac = math.Abs(speed) / maxSpeed
	}
	s := c.BaselineSensitivity / (1 + c.FlowNoiseK*math.Pow(frac, c.FlowNoiseExp))
	if towed && c.TowedArrayMaxSpeed > 0 && math.Abs(speed) < c.TowedArrayMaxSpeed {
		s *= 1 + (c.TowedArrayMultiplier-1)*(1-math.Abs(speed)/c.TowedArrayMaxSpeed)
	}
	return s
}

// WakeFactor returns the range multiplier for a target relative to the observer's own wake.
func (e *DetectionEngine) WakeFactor(obs Observer, target r3.Vec) float64 {
	rel := r3.Sub(target, obs.Pos)
	rel.Y = 0
	d := r3.Norm(rel)
	if d == 0 || d > e.cfg.WakeMaxDistance {
		return 1
	}
	astern := r3.Scale(-1, components.HeadingVector(obs.Heading))
	if angleOff(r3.Scale(1/d, rel), astern) <= deg2rad(e.cfg.WakeHalfAngleDeg) {
		return 1 - e.cfg.WakeReduction
	}
	return 1
}

// AspectFactor returns the range multiplier for how the target presents to the observer.
// Bow-on and stern-on are harder to hear than beam-on.
func (e *DetectionEngine) AspectFactor(obs Observer, t Target) float64 {
	if !t.Oriented() {
		return 1
	}
	toObs := r3.Sub(obs.Pos, t.Position())
	toObs.Y = 0
	if r3.Norm(toObs) == 0 {
		return e.cfg.AspectBeam
	}
	a := rad2deg(angleOff(r3.Unit(toObs), components.HeadingVector(t.Heading())))
	if a <= 90 {
		return e.cfg.AspectBow + (e.cfg.AspectBeam-e.cfg.AspectBow)*a/90
	}
	return e.cfg.AspectBeam + (e.cfg.AspectStern-e.cfg.AspectBeam)*(a-90)/90
}

// IdentifyThreshold returns the strength needed to classify a contact.
func (e *DetectionEngine) IdentifyThreshold(mode components.SonarMode) float64 {
	if mode == components.SonarActive {
		return e.cfg.IdentifyThresholdActive
	}
	return e.cfg.IdentifyThresholdPassive
}

// Strength scores a target at distance d against an effective range.
func (e *DetectionEngine) Strength(signature, sensitivity, d, effRange float64) float64 {
	if effRange <= 0 || d >= effRange {
		return 0
	}
	ref := e.cfg.ReferenceLoudness
	if ref <= 0 {
		ref = 1
	}
	return clamp(signature*sensitivity*(1-d/effRange)/ref, 0, 10)
}

// Sweep detects indexed candidates and the given decoys from the observer's position.
// Results are sorted by target ID.
func (e *DetectionEngine) Sweep(obs Observer, mode components.SonarMode, sensitivity float64, decoys []Target, now float64) []components.Contact {
	nominal := e.NominalRange(mode, obs.SensorRatio)
	if nominal <= 0 {
		return nil
	}

	var contacts []components.Contact
	e.scratch = e.grid.QueryRadiusInto(e.scratch[:0], obs.Pos.X, obs.Pos.Z, nominal)
	for _, n := range e.scratch {
		t := e.candidates[n.Idx]
		if t.ID() == obs.ID {
			continue
		}
		if c, ok := e.detect(obs, t, mode, sensitivity, nominal, now); ok {
			contacts = append(contacts, c)
		}
	}
	for _, t := range decoys {
		if c, ok := e.detect(obs, t, mode, sensitivity, nominal, now); ok {
			contacts = append(contacts, c)
		}
	}

	slices.SortFunc(contacts, byTargetID)
	return contacts
}

func (e *DetectionEngine) detect(obs Observer, t Target, mode components.SonarMode, sensitivity, nominal, now float64) (components.Contact, bool) {
	pos := t.Position()
	d := distance(obs.Pos, pos)
	eff := nominal * e.WakeFactor(obs, pos) * e.AspectFactor(obs, t)
	if d > eff {
		return components.Contact{}, false
	}

	strength := e.Strength(t.Signature(), sensitivity, d, eff)
	if ds, ok := t.(DecoySnapshot); ok {
		strength = math.Min(strength, ds.Cap)
	}
	if strength < e.cfg.MinStrength {
		return components.Contact{}, false
	}

	class := components.ContactUnidentified
	if strength >= e.IdentifyThreshold(mode) {
		class = components.ContactIdentified
	}
	return components.Contact{
		TargetID:  t.ID(),
		Distance:  d,
		Bearing:   BearingDeg(obs.Pos, pos),
		Strength:  strength,
		Class:     class,
		Spoofed:   t.Kind() == TargetDecoy,
		Mine:      t.Kind() == TargetMine,
		Position:  pos,
		Mode:      mode,
		FirstSeen: now,
		UpdatedAt: now,
	}, true
}

// Merge folds a sweep's results into the sensor's contact table.
// Passive contacts not re-detected by a passive sweep are dropped; active and
// revealed contacts are held until Expire removes them.
func (e *DetectionEngine) Merge(sensor *components.Sensor, fresh []components.Contact, mode components.SonarMode, now float64) {
	merged := make([]components.Contact, 0, len(sensor.Contacts)+len(fresh))
	for _, c := range sensor.Contacts {
		if containsTarget(fresh, c.TargetID) {
			continue
		}
		if mode == components.SonarPassive && c.Mode == components.SonarPassive {
			continue
		}
		merged = append(merged, c)
	}
	for _, c := range fresh {
		if old, ok := sensor.Find(c.TargetID); ok {
			c.FirstSeen = old.FirstSeen
			c.Decoy = old.Decoy
			// A weaker passive return does not downgrade a held active classification.
			if old.Mode == components.SonarActive && mode == components.SonarPassive && old.Class > c.Class {
				c.Class = old.Class
			}
		}
		merged = append(merged, c)
	}
	e.crossCheck(merged, now)
	slices.SortFunc(merged, byTargetID)
	sensor.Contacts = merged
}

// Reveal adds contacts supplied by a drone. They are held like active contacts.
func (e *DetectionEngine) Reveal(sensor *components.Sensor, revealed []components.Contact, now float64) {
	for i := range revealed {
		revealed[i].Mode = components.SonarActive
		revealed[i].Revealed = true
	}
	e.Merge(sensor, revealed, components.SonarActive, now)
}

// RevealAround reports every indexed candidate within radius of a drone at
// origin, positioned relative to the receiving vessel at owner. Revealed
// contacts are always identified.
func (e *DetectionEngine) RevealAround(origin r3.Vec, owner Observer, radius, now float64) []components.Contact {
	var out []components.Contact
	e.scratch = e.grid.QueryRadiusInto(e.scratch[:0], origin.X, origin.Z, radius)
	for _, n := range e.scratch {
		t := e.candidates[n.Idx]
		if t.ID() == owner.ID || t.Team() == owner.Team {
			continue
		}
		pos := t.Position()
		d := distance(origin, pos)
		if d > radius {
			continue
		}
		out = append(out, components.Contact{
			TargetID:  t.ID(),
			Distance:  distance(owner.Pos, pos),
			Bearing:   BearingDeg(owner.Pos, pos),
			Strength:  clamp(10*(1-d/radius), e.cfg.MinStrength, 10),
			Class:     components.ContactIdentified,
			Mine:      t.Kind() == TargetMine,
			Position:  pos,
			Mode:      components.SonarActive,
			Revealed:  true,
			FirstSeen: now,
			UpdatedAt: now,
		})
	}
	slices.SortFunc(out, byTargetID)
	return out
}

// Expire drops active and revealed contacts older than the hold time.
func (e *DetectionEngine) Expire(sensor *components.Sensor, now float64) {
	sensor.Contacts = slices.DeleteFunc(sensor.Contacts, func(c components.Contact) bool {
		return c.Mode == components.SonarActive && now-c.UpdatedAt > e.cfg.ActiveHold
	})
	if sensor.HasSelection {
		if _, ok := sensor.Find(sensor.SelectedID); !ok {
			sensor.HasSelection = false
		}
	}
}

// crossCheck flags decoys that have been tracked long enough to be seen through.
func (e *DetectionEngine) crossCheck(contacts []components.Contact, now float64) {
	for i := range contacts {
		c := &contacts[i]
		if c.Spoofed && !c.Decoy && now-c.FirstSeen >= e.cfg.CrossCheckTime {
			c.Decoy = true
		}
	}
}

func byTargetID(a, b components.Contact) int {
	return cmp.Compare(a.TargetID, b.TargetID)
}

func containsTarget(contacts []components.Contact, id uint32) bool {
	for _, c := range contacts {
		if c.TargetID == id {
			return true
		}
	}
	return false
}

package telemetry

// Collector accumulates combat events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event counters for the current window
	torpedoesFired  int
	hits            int
	selfDestructs   int
	kills           int
	locks           int
	pings           int
	knuckles        int
	noisemakers     int
	newContacts     int
	systemsDisabled int
	damageDealt     float64
}

// NewCollector creates a stats collector.
// windowDurationSec is the window length in simulation seconds; dt is seconds per tick.
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticks := int32(windowDurationSec / dt)
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{windowDurationTicks: ticks, dt: dt}
}

// RecordHit records a torpedo or mine strike and the damage it carried.
func (c *Collector) RecordHit(damage float64) {
	c.hits++
	c.damageDealt += damage
}

// RecordLock records a weapon lock being achieved.
func (c *Collector) RecordLock() {
	c.locks++
}

// RecordNewContacts records contacts that were not previously held.
func (c *Collector) RecordNewContacts(n int) {
	c.newContacts += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WindowSample is the world state sampled when a window closes.
type WindowSample struct {
	VesselsAlive     int
	PlayerAlive      bool
	TorpedoesInWater int
	Signatures       []float64 // current signature of each live vessel
	HullFractions    []float64 // hull integrity of each live vessel
}

// Flush produces WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample WindowSample) WindowStats {
	var hitRate float64
	if c.torpedoesFired > 0 {
		hitRate = float64(c.hits) / float64(c.torpedoesFired)
	}
	sig := ComputeDistribution(sample.Signatures)
	hull := ComputeDistribution(sample.HullFractions)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		VesselsAlive:     sample.VesselsAlive,
		PlayerAlive:      sample.PlayerAlive,
		TorpedoesInWater: sample.TorpedoesInWater,

		TorpedoesFired: c.torpedoesFired,
		Hits:           c.hits,
		SelfDestructs:  c.selfDestructs,
		Kills:          c.kills,
		HitRate:        hitRate,
		Locks:          c.locks,

		Pings:       c.pings,
		Knuckles:    c.knuckles,
		Noisemakers: c.noisemakers,
		NewContacts: c.newContacts,

		SystemsDisabled: c.systemsDisabled,
		DamageDealt:     c.damageDealt,

		SigMean: sig.Mean,
		SigStd:  sig.Std,
		SigP90:  sig.P90,

		HullMean: hull.Mean,
		HullStd:  hull.Std,
		HullMin:  hull.Min,
	}

	start := currentTick
	*c = Collector{windowDurationTicks: c.windowDurationTicks, dt: c.dt, windowStartTick: start}
	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

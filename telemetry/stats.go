package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated combat statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// State at window end
	VesselsAlive     int  `csv:"vessels_alive"`
	PlayerAlive      bool `csv:"player_alive"`
	TorpedoesInWater int  `csv:"torpedoes_in_water"`

	// Weapons
	TorpedoesFired int     `csv:"torpedoes_fired"`
	Hits           int     `csv:"hits"`
	SelfDestructs  int     `csv:"self_destructs"`
	Kills          int     `csv:"kills"`
	HitRate        float64 `csv:"hit_rate"`
	Locks          int     `csv:"locks"`

	// Acoustics
	Pings       int `csv:"pings"`
	Knuckles    int `csv:"knuckles"`
	Noisemakers int `csv:"noisemakers"`
	NewContacts int `csv:"new_contacts"`

	// Damage
	SystemsDisabled int     `csv:"systems_disabled"`
	DamageDealt     float64 `csv:"damage_dealt"`

	// Signature distribution across live vessels (sampled at window end)
	SigMean float64 `csv:"sig_mean"`
	SigStd  float64 `csv:"sig_std"`
	SigP90  float64 `csv:"sig_p90"`

	// Hull integrity distribution across live vessels
	HullMean float64 `csv:"hull_mean"`
	HullStd  float64 `csv:"hull_std"`
	HullMin  float64 `csv:"hull_min"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std, Min, P90 float64
}

// ComputeDistribution returns mean, standard deviation, minimum and 90th
// percentile of values. An empty sample yields zeros; a single value has zero spread.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		Min:  floats.Min(sorted),
		P90:  stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if n > 1 {
		d.Std = stat.PopStdDev(sorted, nil)
	}
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("vessels_alive", s.VesselsAlive),
		slog.Bool("player_alive", s.PlayerAlive),
		slog.Int("torpedoes_in_water", s.TorpedoesInWater),
		slog.Int("torpedoes_fired", s.TorpedoesFired),
		slog.Int("hits", s.Hits),
		slog.Int("self_destructs", s.SelfDestructs),
		slog.Int("kills", s.Kills),
		slog.Float64("hit_rate", s.HitRate),
		slog.Int("locks", s.Locks),
		slog.Int("pings", s.Pings),
		slog.Int("knuckles", s.Knuckles),
		slog.Int("noisemakers", s.Noisemakers),
		slog.Int("new_contacts", s.NewContacts),
		slog.Int("systems_disabled", s.SystemsDisabled),
		slog.Float64("damage_dealt", s.DamageDealt),
		slog.Float64("sig_mean", s.SigMean),
		slog.Float64("sig_std", s.SigStd),
		slog.Float64("sig_p90", s.SigP90),
		slog.Float64("hull_mean", s.HullMean),
		slog.Float64("hull_std", s.HullStd),
		slog.Float64("hull_min", s.HullMin),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

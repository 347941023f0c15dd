package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
	"github.com/pthm-cable/silentrun/game"
	"github.com/pthm-cable/silentrun/telemetry"
)

// Balance targets. A balanced scenario has the player survive most of the
// run while trading kills roughly evenly with the hostiles.
const (
	targetSurvival  = 0.6
	targetKillShare = 0.5
	pingInterval    = 20.0 // seconds between the scripted player's pings
)

// FitnessEvaluator runs headless engagements and scores their balance.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	configPath string

	mu           sync.Mutex
	bestFitness  float64
	bestRecords  []telemetry.VesselRecord
	lastSurvival float64
	lastKills    float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		bestFitness: math.Inf(1),
	}
}

// BestRecords returns the vessel records of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestRecords() []telemetry.VesselRecord {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRecords
}

// Last returns the mean survival fraction and kill share of the most recent evaluation.
func (fe *FitnessEvaluator) Last() (survival, killShare float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSurvival, fe.lastKills
}

// runResult holds the outcome of one engagement.
type runResult struct {
	survival  float64 // fraction of the run the player stayed afloat
	killShare float64 // hostiles destroyed by the player over hostiles spawned
	records   []telemetry.VesselRecord
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, survival, kills float64
	best := math.Inf(1)
	var bestRecords []telemetry.VesselRecord
	for _, r := range results {
		f := computeFitness(r)
		total += f
		survival += r.survival
		kills += r.killShare
		if f < best {
			best = f
			bestRecords = r.records
		}
	}

	n := float64(len(fe.seeds))
	avg := total / n

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestRecords = bestRecords
	}
	fe.lastSurvival = survival / n
	fe.lastKills = kills / n
	fe.mu.Unlock()

	return avg
}

// runSimulation plays one seeded engagement with a scripted player.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return runResult{}
	}
	fe.params.ApplyToConfig(cfg, x)

	sim := game.New(cfg, game.Options{Seed: seed})
	defer sim.Close()

	dt := cfg.Physics.DT
	pingEvery := max(1, int32(pingInterval/dt))
	sim.Helm(8, 0, 150)

	for sim.Tick() < fe.maxTicks && sim.PlayerAlive() {
		if sim.Tick()%pingEvery == 0 {
			sim.Ping()
		}
		scriptPlayer(sim)
		sim.Step(dt)
	}

	records := sim.Records()
	var hostiles, kills int
	for _, r := range records {
		if r.Player {
			kills = r.Kills
			continue
		}
		hostiles++
	}

	res := runResult{
		survival: float64(sim.Tick()) / float64(fe.maxTicks),
		records:  records,
	}
	if hostiles > 0 {
		res.killShare = float64(kills) / float64(hostiles)
	}
	return res
}

// scriptPlayer selects the nearest identified hostile and fires once locked.
func scriptPlayer(sim *game.Simulation) {
	lock, ok := sim.Lock()
	if !ok {
		return
	}
	if lock.Locked {
		if fc, ok := sim.FireControlOf(sim.PlayerID()); ok {
			for i, s := range fc.Slots {
				if s.Phase == components.PhaseReady && s.Type.Guided() {
					sim.Fire(i)
					break
				}
			}
		}
		return
	}
	if lock.Mode == components.LockContact {
		return
	}

	var best components.Contact
	found := false
	for _, c := range sim.Contacts() {
		if c.Decoy || c.Mine || c.Class != components.ContactIdentified {
			continue
		}
		if !found || c.Distance < best.Distance {
			best, found = c, true
		}
	}
	if found {
		sim.SelectContact(best.TargetID)
	}
}

// computeFitness is the squared distance from the balance targets.
func computeFitness(r runResult) float64 {
	ds := r.survival - targetSurvival
	dk := r.killShare - targetKillShare
	return ds*ds + dk*dk
}

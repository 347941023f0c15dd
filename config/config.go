// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// FacingNames lists the six armor facings in index order.
var FacingNames = [6]string{"fore", "aft", "port", "starboard", "dorsal", "ventral"}

// SystemNames lists the internal systems in index order.
var SystemNames = [6]string{"hull", "engines", "weapons", "sensors", "life_support", "navigation"}

// TorpedoTypeNames lists the torpedo types in index order.
var TorpedoTypeNames = [4]string{"light", "medium", "heavy", "drone"}

// NoisemakerKey is the loadout key for noisemaker countermeasures.
const NoisemakerKey = "noisemaker"

// Config holds all simulation configuration parameters.
type Config struct {
	Physics         PhysicsConfig        `yaml:"physics"`
	World           WorldConfig          `yaml:"world"`
	Terrain         TerrainConfig        `yaml:"terrain"`
	Signature       SignatureConfig      `yaml:"signature"`
	Sonar           SonarConfig          `yaml:"sonar"`
	Damage          DamageConfig         `yaml:"damage"`
	AI              AIConfig             `yaml:"ai"`
	Lock            LockConfig           `yaml:"lock"`
	Countermeasures CountermeasureConfig `yaml:"countermeasures"`
	Telemetry       TelemetryConfig      `yaml:"telemetry"`
	Torpedoes       []TorpedoConfig      `yaml:"torpedoes"`
	DefaultClass    string               `yaml:"default_class"`
	Classes         []ClassConfig        `yaml:"classes"`
	Scenario        ScenarioConfig       `yaml:"scenario"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`            // seconds per tick
	KnotsToMPS   float64 `yaml:"knots_to_mps"`  // speed unit conversion
	Acceleration float64 `yaml:"acceleration"`  // knots per second toward target speed
	DepthRate    float64 `yaml:"depth_rate"`    // metres per second toward target depth
	SurfaceDepth float64 `yaml:"surface_depth"` // shallowest allowed depth
}

// WorldConfig holds the playable area.
type WorldConfig struct {
	HalfWidth    float64 `yaml:"half_width"`
	MaxDepth     float64 `yaml:"max_depth"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// TerrainConfig holds procedural seabed and thermal layer parameters.
type TerrainConfig struct {
	SeabedDepth       float64 `yaml:"seabed_depth"`
	SeabedAmplitude   float64 `yaml:"seabed_amplitude"`
	SeabedScale       float64 `yaml:"seabed_scale"`
	ThermalLayerDepth float64 `yaml:"thermal_layer_depth"`
	ThermalAmplitude  float64 `yaml:"thermal_amplitude"`
	ThermalScale      float64 `yaml:"thermal_scale"`
}

// SignatureConfig holds acoustic signature model coefficients.
type SignatureConfig struct {
	SpeedFactor          float64 `yaml:"speed_factor"`
	TurnFactor           float64 `yaml:"turn_factor"` // per degree/second
	TurnCap              float64 `yaml:"turn_cap"`
	SupercavitationBoost float64 `yaml:"supercavitation_boost"`
	SupercavitationFrac  float64 `yaml:"supercavitation_fraction"`
	ThermalReduction     float64 `yaml:"thermal_reduction"`
	ThermalBand          float64 `yaml:"thermal_band"`
	SeafloorReduction    float64 `yaml:"seafloor_reduction"`
	SeafloorClearance    float64 `yaml:"seafloor_clearance"`
	KnuckleReduction     float64 `yaml:"knuckle_reduction"`
	KnuckleWindow        float64 `yaml:"knuckle_window"`
	LaunchSpike          float64 `yaml:"launch_spike"`
	LaunchDecay          float64 `yaml:"launch_decay"`
	PingBoost            float64 `yaml:"ping_boost"`
	PingWindow           float64 `yaml:"ping_window"`
	FireBoost            float64 `yaml:"fire_boost"`
	FireWindow           float64 `yaml:"fire_window"`
}

// SonarConfig holds detection parameters.
type SonarConfig struct {
	ActiveRange              float64 `yaml:"active_range"`
	PassiveRange             float64 `yaml:"passive_range"`
	PassiveInterval          float64 `yaml:"passive_interval"`
	ActiveSensitivity        float64 `yaml:"active_sensitivity"`
	BaselineSensitivity      float64 `yaml:"baseline_sensitivity"`
	FlowNoiseK               float64 `yaml:"flow_noise_k"`
	FlowNoiseExp             float64 `yaml:"flow_noise_exp"`
	TowedArrayMultiplier     float64 `yaml:"towed_array_multiplier"`
	TowedArrayMaxSpeed       float64 `yaml:"towed_array_max_speed"`
	ReferenceLoudness        float64 `yaml:"reference_loudness"`
	MinStrength              float64 `yaml:"min_strength"`
	IdentifyThresholdActive  float64 `yaml:"identify_threshold_active"`
	IdentifyThresholdPassive float64 `yaml:"identify_threshold_passive"`
	WakeReduction            float64 `yaml:"wake_reduction"`
	WakeHalfAngleDeg         float64 `yaml:"wake_half_angle_deg"`
	WakeMaxDistance          float64 `yaml:"wake_max_distance"`
	AspectBow                float64 `yaml:"aspect_bow"`
	AspectBeam               float64 `yaml:"aspect_beam"`
	AspectStern              float64 `yaml:"aspect_stern"`
	CrossCheckTime           float64 `yaml:"cross_check_time"`
	ActiveHold               float64 `yaml:"active_hold"`
	DefaultPingCadence       float64 `yaml:"default_ping_cadence"`
}

// DamageConfig holds damage model and damage control parameters.
type DamageConfig struct {
	RedistributionRate float64                       `yaml:"redistribution_rate"` // fraction per second
	ReinforceFloor     float64                       `yaml:"reinforce_floor"`
	DisabledFloor      float64                       `yaml:"disabled_floor"`
	RepairRate         float64                       `yaml:"repair_rate"`
	HullRepairRate     float64                       `yaml:"hull_repair_rate"`
	SafeImpactSpeed    float64                       `yaml:"safe_impact_speed"`
	CollisionFactor    float64                       `yaml:"collision_factor"`
	CrushDamageRate    float64                       `yaml:"crush_damage_rate"`
	HitTable           map[string]map[string]float64 `yaml:"hit_table"` // facing -> system -> weight
}

// AIConfig holds shared AI controller parameters.
type AIConfig struct {
	SweepInterval          float64 `yaml:"sweep_interval"`
	DecisionInterval       float64 `yaml:"decision_interval"`
	MaxEngagementTime      float64 `yaml:"max_engagement_time"`
	SearchTimeout          float64 `yaml:"search_timeout"`
	ArrivalRadius          float64 `yaml:"arrival_radius"`
	RetreatHealth          float64 `yaml:"retreat_health"`
	CautiousAggressiveness float64 `yaml:"cautious_aggressiveness"`
	RecoverHealth          float64 `yaml:"recover_health"`
	SearchRangeFactor      float64 `yaml:"search_range_factor"`
	RetreatDistance        float64 `yaml:"retreat_distance"`
	PatrolSpeed            float64 `yaml:"patrol_speed"`
	EngageSpeed            float64 `yaml:"engage_speed"`
	RetreatSpeed           float64 `yaml:"retreat_speed"`
	SearchSpeed            float64 `yaml:"search_speed"`
	WeaponRange            float64 `yaml:"weapon_range"`
}

// LockConfig holds weapon lock parameters.
type LockConfig struct {
	BaseRate             float64 `yaml:"base_rate"`
	SonarAssist          float64 `yaml:"sonar_assist"`
	PingGrace            float64 `yaml:"ping_grace"`
	ReticleRadius        float64 `yaml:"reticle_radius"`
	DecayRate            float64 `yaml:"decay_rate"`
	LockDistance         float64 `yaml:"lock_distance"`
	LockedThreshold      float64 `yaml:"locked_threshold"`
	CenterDistanceFactor float64 `yaml:"center_distance_factor"`
	GunnerySkill         float64 `yaml:"gunnery_skill"`
}

// CountermeasureConfig holds knuckle and noisemaker parameters.
type CountermeasureConfig struct {
	KnuckleMinSpeed    float64 `yaml:"knuckle_min_speed"`
	KnuckleMinTurnRate float64 `yaml:"knuckle_min_turn_rate"` // degrees per second
	KnuckleCooldown    float64 `yaml:"knuckle_cooldown"`
	KnuckleLifetime    float64 `yaml:"knuckle_lifetime"`
	KnuckleStrength    float64 `yaml:"knuckle_strength"`
	KnuckleNoise       float64 `yaml:"knuckle_noise"`
	NoisemakerLifetime float64 `yaml:"noisemaker_lifetime"`
	NoisemakerStrength float64 `yaml:"noisemaker_strength"`
	NoisemakerNoise    float64 `yaml:"noisemaker_noise"`
	MineStrength       float64 `yaml:"mine_strength"`
	MineNoise          float64 `yaml:"mine_noise"`
	MineTriggerRadius  float64 `yaml:"mine_trigger_radius"`
	MineDamage         float64 `yaml:"mine_damage"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// TorpedoConfig defines one torpedo type.
type TorpedoConfig struct {
	Type               string  `yaml:"type"`
	MaxSpeed           float64 `yaml:"max_speed"`
	ApproachFraction   float64 `yaml:"approach_fraction"`
	SwitchDistance     float64 `yaml:"switch_distance"`
	ArmingDistance     float64 `yaml:"arming_distance"`
	TurnRate           float64 `yaml:"turn_rate"` // degrees per second
	Damage             float64 `yaml:"damage"`
	FuseRadius         float64 `yaml:"fuse_radius"`
	MaxRange           float64 `yaml:"max_range"`
	SafetyArcDeg       float64 `yaml:"safety_arc_deg"`
	SelfDestructDelay  float64 `yaml:"self_destruct_delay"`
	ActivationDistance float64 `yaml:"activation_distance"`
	RevealRadius       float64 `yaml:"reveal_radius"`
	LockTimeActive     float64 `yaml:"lock_time_active"`
	LockTimePassive    float64 `yaml:"lock_time_passive"`
	LoadTime           float64 `yaml:"load_time"`
	FloodTime          float64 `yaml:"flood_time"`
}

// ArmorConfig holds one facing's armor layers.
type ArmorConfig struct {
	Fast      float64 `yaml:"fast"`
	Slow      float64 `yaml:"slow"`
	Threshold float64 `yaml:"threshold"`
}

// SystemConfig holds one internal system's health.
type SystemConfig struct {
	HP        float64 `yaml:"hp"`
	Threshold float64 `yaml:"threshold"` // fraction of HP a single hit can take
}

// AITunables holds per-class AI behavior parameters.
type AITunables struct {
	DetectionRange  float64 `yaml:"detection_range"`
	EngagementRange float64 `yaml:"engagement_range"`
	Aggressiveness  float64 `yaml:"aggressiveness"`
	EvasionSkill    float64 `yaml:"evasion_skill"`
	ReactionLatency float64 `yaml:"reaction_latency"`
	WeaponCooldown  float64 `yaml:"weapon_cooldown"`
	EngageThreshold float64 `yaml:"engage_threshold"`
}

// ClassConfig defines a vessel class as written in YAML.
type ClassConfig struct {
	Name            string                  `yaml:"name"`
	BaseSignature   float64                 `yaml:"base_signature"`
	CavitationSpeed float64                 `yaml:"cavitation_speed"`
	CavitationJump  float64                 `yaml:"cavitation_jump"`
	MaxSpeed        float64                 `yaml:"max_speed"`
	TurnRate        float64                 `yaml:"turn_rate"` // degrees per second
	PitchRate       float64                 `yaml:"pitch_rate"`
	RollRate        float64                 `yaml:"roll_rate"`
	TestDepth       float64                 `yaml:"test_depth"`
	CrushDepth      float64                 `yaml:"crush_depth"`
	Armor           map[string]ArmorConfig  `yaml:"armor"`
	Systems         map[string]SystemConfig `yaml:"systems"`
	Loadout         map[string]int          `yaml:"loadout"`
	Slots           []string                `yaml:"slots"`
	AI              AITunables              `yaml:"ai"`
}

// ScenarioVessel places one AI vessel at startup.
type ScenarioVessel struct {
	Class      string    `yaml:"class"`
	Role       string    `yaml:"role"`
	Team       int       `yaml:"team"`
	Position   []float64 `yaml:"position"`
	HeadingDeg float64   `yaml:"heading_deg"`
	Leader     *int      `yaml:"leader,omitempty"` // index into Vessels
}

// ScenarioConfig describes the headless starting layout.
type ScenarioConfig struct {
	PlayerClass      string           `yaml:"player_class"`
	PlayerPosition   []float64        `yaml:"player_position"`
	PlayerHeadingDeg float64          `yaml:"player_heading_deg"`
	Vessels          []ScenarioVessel `yaml:"vessels"`
	Mines            [][]float64      `yaml:"mines"`
}

// ClassSpec is the validated, index-addressed form of a vessel class.
// Array indices follow FacingNames, SystemNames and TorpedoTypeNames.
type ClassSpec struct {
	Name            string
	BaseSignature   float64
	CavitationSpeed float64
	CavitationJump  float64
	MaxSpeed        float64
	TurnRate        float64 // radians per second
	PitchRate       float64 // radians per second
	RollRate        float64 // radians per second
	TestDepth       float64
	CrushDepth      float64
	Armor           [6]ArmorConfig
	Systems         [6]SystemConfig
	Torpedoes       [4]int
	Noisemakers     int
	Slots           []int // torpedo type index per launcher
	AI              AITunables
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Classes    []ClassSpec
	ClassIndex map[string]int
	Default    int              // index of the fallback class
	Torpedoes  [4]TorpedoConfig // indexed by TorpedoTypeNames
	HitTable   [6][6]float64    // facing -> normalized system probabilities
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes layered over the embedded defaults.
// Only fields present in data are overwritten; lists are replaced whole.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// computeDerived validates the loaded config and builds index-addressed tables.
func (c *Config) computeDerived() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if !(c.Damage.ReinforceFloor >= 0) {
		return fmt.Errorf("damage.reinforce_floor must be non-negative, got %v", c.Damage.ReinforceFloor)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"signature.thermal_reduction", c.Signature.ThermalReduction},
		{"signature.seafloor_reduction", c.Signature.SeafloorReduction},
		{"signature.knuckle_reduction", c.Signature.KnuckleReduction},
		{"sonar.wake_reduction", c.Sonar.WakeReduction},
		{"damage.disabled_floor", c.Damage.DisabledFloor},
	} {
		if !(f.v >= 0 && f.v <= 1) {
			return fmt.Errorf("%s must be in [0,1], got %v", f.name, f.v)
		}
	}

	seenTorps := make(map[string]bool, len(c.Torpedoes))
	for _, tc := range c.Torpedoes {
		idx := indexOf(TorpedoTypeNames[:], tc.Type)
		if idx < 0 {
			return fmt.Errorf("unknown torpedo type %q", tc.Type)
		}
		if seenTorps[tc.Type] {
			return fmt.Errorf("duplicate torpedo type %q", tc.Type)
		}
		seenTorps[tc.Type] = true
		c.Derived.Torpedoes[idx] = tc
	}
	for _, name := range TorpedoTypeNames {
		if !seenTorps[name] {
			return fmt.Errorf("missing torpedo type %q", name)
		}
	}

	for f, facing := range FacingNames {
		row, ok := c.Damage.HitTable[facing]
		if !ok {
			return fmt.Errorf("hit table missing facing %q", facing)
		}
		var sum float64
		for name, w := range row {
			s := indexOf(SystemNames[:], name)
			if s < 0 {
				return fmt.Errorf("hit table %q: unknown system %q", facing, name)
			}
			if w < 0 || math.IsNaN(w) {
				return fmt.Errorf("hit table %q: negative weight for %q", facing, name)
			}
			c.Derived.HitTable[f][s] = w
			sum += w
		}
		if sum <= 0 {
			return fmt.Errorf("hit table %q has no positive weights", facing)
		}
		for s := range c.Derived.HitTable[f] {
			c.Derived.HitTable[f][s] /= sum
		}
	}

	if len(c.Classes) == 0 {
		return fmt.Errorf("no vessel classes defined")
	}
	c.Derived.Classes = make([]ClassSpec, 0, len(c.Classes))
	c.Derived.ClassIndex = make(map[string]int, len(c.Classes))
	for i := range c.Classes {
		cc := &c.Classes[i]
		// Duplicate names are rejected rather than letting the later entry win.
		if _, dup := c.Derived.ClassIndex[cc.Name]; dup {
			return fmt.Errorf("duplicate vessel class %q", cc.Name)
		}
		spec, err := cc.spec()
		if err != nil {
			return fmt.Errorf("class %q: %w", cc.Name, err)
		}
		c.Derived.ClassIndex[cc.Name] = len(c.Derived.Classes)
		c.Derived.Classes = append(c.Derived.Classes, spec)
	}

	if len(c.Scenario.PlayerPosition) != 3 {
		return fmt.Errorf("scenario player_position needs 3 coordinates")
	}

	def, ok := c.Derived.ClassIndex[c.DefaultClass]
	if !ok {
		return fmt.Errorf("default_class %q is not a defined class", c.DefaultClass)
	}
	c.Derived.Default = def

	for i, m := range c.Scenario.Mines {
		if len(m) != 3 {
			return fmt.Errorf("scenario mine %d: position needs 3 coordinates", i)
		}
	}
	for i, v := range c.Scenario.Vessels {
		if len(v.Position) != 3 {
			return fmt.Errorf("scenario vessel %d: position needs 3 coordinates", i)
		}
		if v.Leader != nil && (*v.Leader < 0 || *v.Leader >= len(c.Scenario.Vessels) || *v.Leader == i) {
			return fmt.Errorf("scenario vessel %d: invalid leader %d", i, *v.Leader)
		}
	}
	return nil
}

// spec converts the YAML class into its validated form.
func (cc *ClassConfig) spec() (ClassSpec, error) {
	if cc.Name == "" {
		return ClassSpec{}, fmt.Errorf("class name is empty")
	}
	if cc.MaxSpeed <= 0 {
		return ClassSpec{}, fmt.Errorf("max_speed must be positive")
	}
	s := ClassSpec{
		Name:            cc.Name,
		BaseSignature:   cc.BaseSignature,
		CavitationSpeed: cc.CavitationSpeed,
		CavitationJump:  cc.CavitationJump,
		MaxSpeed:        cc.MaxSpeed,
		TurnRate:        cc.TurnRate * math.Pi / 180,
		PitchRate:       cc.PitchRate * math.Pi / 180,
		RollRate:        cc.RollRate * math.Pi / 180,
		TestDepth:       cc.TestDepth,
		CrushDepth:      cc.CrushDepth,
		AI:              cc.AI,
	}

	for f, facing := range FacingNames {
		a, ok := cc.Armor[facing]
		if !ok {
			return ClassSpec{}, fmt.Errorf("armor missing facing %q", facing)
		}
		if a.Fast < 0 || a.Slow < 0 || a.Threshold < 0 {
			return ClassSpec{}, fmt.Errorf("armor %q has negative values", facing)
		}
		s.Armor[f] = a
	}
	for name := range cc.Armor {
		if indexOf(FacingNames[:], name) < 0 {
			return ClassSpec{}, fmt.Errorf("unknown armor facing %q", name)
		}
	}

	for i, sys := range SystemNames {
		sc, ok := cc.Systems[sys]
		if !ok {
			return ClassSpec{}, fmt.Errorf("systems missing %q", sys)
		}
		if sc.HP <= 0 {
			return ClassSpec{}, fmt.Errorf("system %q needs positive hp", sys)
		}
		if sc.Threshold <= 0 || sc.Threshold > 1 {
			return ClassSpec{}, fmt.Errorf("system %q threshold must be in (0, 1]", sys)
		}
		s.Systems[i] = sc
	}

	for key, n := range cc.Loadout {
		if n < 0 {
			return ClassSpec{}, fmt.Errorf("loadout %q is negative", key)
		}
		if key == NoisemakerKey {
			s.Noisemakers = n
			continue
		}
		idx := indexOf(TorpedoTypeNames[:], key)
		if idx < 0 {
			return ClassSpec{}, fmt.Errorf("unknown loadout entry %q", key)
		}
		s.Torpedoes[idx] = n
	}

	s.Slots = make([]int, 0, len(cc.Slots))
	for _, slot := range cc.Slots {
		idx := indexOf(TorpedoTypeNames[:], slot)
		if idx < 0 {
			return ClassSpec{}, fmt.Errorf("unknown slot type %q", slot)
		}
		s.Slots = append(s.Slots, idx)
	}
	return s, nil
}

// Class returns the spec for the named class.
// Unknown names fall back to the default class with a warning.
func (c *Config) Class(name string) ClassSpec {
	if idx, ok := c.Derived.ClassIndex[name]; ok {
		return c.Derived.Classes[idx]
	}
	fallback := c.Derived.Classes[c.Derived.Default]
	slog.Warn("unknown vessel class, using default", "class", name, "default", fallback.Name)
	return fallback
}

// Torpedo returns the spec for a torpedo type index.
func (c *Config) Torpedo(t int) TorpedoConfig {
	return c.Derived.Torpedoes[t]
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

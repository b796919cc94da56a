package contract

import (
	"fmt"
	"maps"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/ltin1214/dcurves/schema"
)

// Default values for configuration.
const (
	DefaultPrecision        = 3
	MaxPrecision            = 6
	DefaultSpan             = 0.65
	DefaultSmoothMinPoints  = 3
	DefaultMinAtRisk        = 1
	DefaultInterventionsPer = 100
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds CPU and memory profiling options.
type ProfileConfig struct {
	Enabled bool
	Prefix  string // Output file prefix for .cpu.prof and .mem.prof
}

// ProcessProfilingConfig validates and applies the profiling prefix.
// An empty prefix leaves profiling disabled.
func ProcessProfilingConfig(p *ProfileConfig, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if strings.ContainsAny(prefix, " \t") {
		return fmt.Errorf("profile prefix must not contain whitespace (received %q)", prefix)
	}
	p.Prefix = prefix
	p.Enabled = prefix != ""
	return nil
}

// Config holds the runtime configuration for one analysis run.
// This struct remains the "final, validated" config.
type Config struct {
	DataPath string // Path to the CSV subject table

	Regime     schema.Regime
	OutcomeCol string // Binary outcome or case flag column
	TimeCol    string // Follow-up time column (survival)
	EventCol   string // Event level column (survival)

	Predictors []string                    // Predictor column names, evaluation order
	ScoreKinds map[string]schema.ScoreKind // Per-predictor score kind, default probability
	Harms      map[string]float64          // Per-predictor flat acting cost, default 0

	Thresholds []float64 // Explicit threshold grid; nil = core default sweep

	TimeHorizon float64 // Required for the survival regime
	Competing   bool    // Competing-risks semantics for the survival regime
	MinAtRisk   int     // Minimum at-risk subgroup size at the horizon

	Prevalence    float64 // External prevalence for the case-control regime
	HasPrevalence bool

	Smooth          bool
	Span            float64 // Lowess span in (0,1]
	SmoothMinPoints int     // Below this many thresholds, smoothing is a no-op

	InterventionsPer int // Population scale for the interventions-avoided view

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DataPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Predictors       string  `mapstructure:"predictors"`
	ScoreKind        string  `mapstructure:"score-kind"`
	Harm             string  `mapstructure:"harm"`
	Thresholds       string  `mapstructure:"thresholds"`
	Smooth           bool    `mapstructure:"smooth"`
	Span             float64 `mapstructure:"span"`
	InterventionsPer int     `mapstructure:"interventions-per"`
	Workers          int     `mapstructure:"workers"`
	Precision        int     `mapstructure:"precision"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Width            int     `mapstructure:"width"`
	Color            string  `mapstructure:"color"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`

	// --- Fields from binaryCmd / casecontrolCmd flags ---
	Outcome string `mapstructure:"outcome"`

	// --- Fields from survivalCmd flags ---
	TimeCol     string  `mapstructure:"time-col"`
	EventCol    string  `mapstructure:"event-col"`
	TimeHorizon float64 `mapstructure:"time-horizon"`
	Competing   bool    `mapstructure:"competing"`
	MinAtRisk   int     `mapstructure:"min-at-risk"`

	// --- Fields from casecontrolCmd flags ---
	Prevalence float64 `mapstructure:"prevalence"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Predictors != nil {
		clone.Predictors = slices.Clone(c.Predictors)
	}
	if c.Thresholds != nil {
		clone.Thresholds = slices.Clone(c.Thresholds)
	}
	if c.ScoreKinds != nil {
		clone.ScoreKinds = make(map[string]schema.ScoreKind, len(c.ScoreKinds))
		maps.Copy(clone.ScoreKinds, c.ScoreKinds)
	}
	if c.Harms != nil {
		clone.Harms = make(map[string]float64, len(c.Harms))
		maps.Copy(clone.Harms, c.Harms)
	}
	return &clone
}

// HarmFor returns the flat acting cost for a predictor, defaulting to 0.
func (c *Config) HarmFor(name string) float64 {
	if c.Harms == nil {
		return 0
	}
	return c.Harms[name]
}

// KindFor returns the score kind for a predictor, defaulting to probability.
func (c *Config) KindFor(name string) schema.ScoreKind {
	if c.ScoreKinds != nil {
		if k, ok := c.ScoreKinds[name]; ok {
			return k
		}
	}
	return schema.ProbabilityKind
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct. The regime is decided by the
// subcommand, not by the raw input.
func ProcessAndValidate(cfg *Config, regime schema.Regime, input *ConfigRawInput) error {
	cfg.Regime = regime
	if _, ok := schema.ValidRegimes[regime]; !ok {
		return fmt.Errorf("invalid outcome regime %q", regime)
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPredictors(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := processHarms(cfg, input); err != nil {
		return err
	}
	if err := processScoreKinds(cfg, input); err != nil {
		return err
	}
	if err := processRegimeInputs(cfg, input); err != nil {
		return err
	}
	if err := processSmoothing(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-regime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DataPath = input.DataPathStr
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	if cfg.DataPath == "" {
		return fmt.Errorf("a subject data file is required")
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 3. Interventions Scale Validation ---
	if input.InterventionsPer <= 0 {
		return fmt.Errorf("interventions-per must be greater than 0 (received %d)", input.InterventionsPer)
	}
	cfg.InterventionsPer = input.InterventionsPer

	// --- 4. History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// processPredictors splits and validates the predictor list.
func processPredictors(cfg *Config, input *ConfigRawInput) error {
	cfg.Predictors = nil
	for p := range strings.SplitSeq(input.Predictors, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if slices.Contains(cfg.Predictors, p) {
			return fmt.Errorf("predictor %q listed more than once", p)
		}
		cfg.Predictors = append(cfg.Predictors, p)
	}
	if len(cfg.Predictors) == 0 {
		return fmt.Errorf("at least one predictor is required (use --predictors)")
	}
	return nil
}

// processThresholds parses the threshold grid expression. An empty input
// leaves cfg.Thresholds nil so the core falls back to its default sweep.
// Accepted forms: "lo:hi:step" for an inclusive sweep, or a comma list.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	expr := strings.TrimSpace(input.Thresholds)
	if expr == "" {
		cfg.Thresholds = nil
		return nil
	}

	if strings.Contains(expr, ":") {
		parts := strings.Split(expr, ":")
		if len(parts) != 3 {
			return fmt.Errorf("threshold sweep must be lo:hi:step (received %q)", expr)
		}
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return fmt.Errorf("invalid sweep start %q: %w", parts[0], err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid sweep end %q: %w", parts[1], err)
		}
		step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return fmt.Errorf("invalid sweep step %q: %w", parts[2], err)
		}
		if step <= 0 {
			return fmt.Errorf("sweep step must be positive (received %g)", step)
		}
		if hi < lo {
			return fmt.Errorf("sweep end %g is below start %g", hi, lo)
		}
		var grid []float64
		// Index arithmetic keeps the sweep free of accumulated float error.
		for i := 0; ; i++ {
			pt := lo + float64(i)*step
			if pt > hi+1e-12 {
				break
			}
			grid = append(grid, pt)
		}
		cfg.Thresholds = grid
		return nil
	}

	var grid []float64
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pt, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("invalid threshold %q: %w", part, err)
		}
		grid = append(grid, pt)
	}
	cfg.Thresholds = grid
	return nil
}

// processHarms parses the "name=value" harm list.
func processHarms(cfg *Config, input *ConfigRawInput) error {
	cfg.Harms = make(map[string]float64)
	if strings.TrimSpace(input.Harm) == "" {
		return nil
	}
	for pair := range strings.SplitSeq(input.Harm, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return fmt.Errorf("harm entries must be name=value (received %q)", pair)
		}
		name = strings.TrimSpace(name)
		h, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("invalid harm for %q: %w", name, err)
		}
		if h < 0 || math.IsNaN(h) {
			return fmt.Errorf("harm for %q must be a nonnegative number (received %g)", name, h)
		}
		if !slices.Contains(cfg.Predictors, name) {
			return fmt.Errorf("harm names unknown predictor %q", name)
		}
		cfg.Harms[name] = h
	}
	return nil
}

// processScoreKinds parses the "name=kind" score kind list.
func processScoreKinds(cfg *Config, input *ConfigRawInput) error {
	cfg.ScoreKinds = make(map[string]schema.ScoreKind)
	if strings.TrimSpace(input.ScoreKind) == "" {
		return nil
	}
	for pair := range strings.SplitSeq(input.ScoreKind, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return fmt.Errorf("score-kind entries must be name=kind (received %q)", pair)
		}
		name = strings.TrimSpace(name)
		kind := schema.ScoreKind(strings.ToLower(strings.TrimSpace(value)))
		if _, valid := schema.ValidScoreKinds[kind]; !valid {
			return fmt.Errorf("invalid score kind %q for %q. must be probability, binary, raw", value, name)
		}
		if !slices.Contains(cfg.Predictors, name) {
			return fmt.Errorf("score-kind names unknown predictor %q", name)
		}
		cfg.ScoreKinds[name] = kind
	}
	return nil
}

// processRegimeInputs validates the fields specific to the chosen regime.
func processRegimeInputs(cfg *Config, input *ConfigRawInput) error {
	switch cfg.Regime {
	case schema.BinaryRegime:
		if input.Outcome == "" {
			return fmt.Errorf("--outcome is required for the binary regime")
		}
		cfg.OutcomeCol = input.Outcome

	case schema.SurvivalRegime:
		if input.TimeCol == "" || input.EventCol == "" {
			return fmt.Errorf("--time-col and --event-col are required for the survival regime")
		}
		if input.TimeHorizon <= 0 || math.IsNaN(input.TimeHorizon) {
			return fmt.Errorf("--time-horizon must be positive for the survival regime (received %g)", input.TimeHorizon)
		}
		if input.MinAtRisk < 1 {
			return fmt.Errorf("--min-at-risk must be at least 1 (received %d)", input.MinAtRisk)
		}
		cfg.TimeCol = input.TimeCol
		cfg.EventCol = input.EventCol
		cfg.TimeHorizon = input.TimeHorizon
		cfg.Competing = input.Competing
		cfg.MinAtRisk = input.MinAtRisk

	case schema.CaseControlRegime:
		if input.Outcome == "" {
			return fmt.Errorf("--outcome is required for the case-control regime")
		}
		cfg.OutcomeCol = input.Outcome
		// Prevalence can never be inferred from case-control sampling.
		if math.IsNaN(input.Prevalence) || input.Prevalence < 0 {
			return fmt.Errorf("--prevalence is required for the case-control regime")
		}
		if input.Prevalence <= 0 || input.Prevalence >= 1 {
			return fmt.Errorf("prevalence must be in the open interval (0,1) (received %g)", input.Prevalence)
		}
		cfg.Prevalence = input.Prevalence
		cfg.HasPrevalence = true
	}
	return nil
}

// processSmoothing validates the smoothing options.
func processSmoothing(cfg *Config, input *ConfigRawInput) error {
	cfg.Smooth = input.Smooth
	cfg.Span = input.Span
	cfg.SmoothMinPoints = DefaultSmoothMinPoints
	if cfg.Span <= 0 || cfg.Span > 1 {
		return fmt.Errorf("span must be in (0,1] (received %g)", cfg.Span)
	}
	return nil
}

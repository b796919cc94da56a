package schema

// Custom string types for type safety.
type (
	// Regime identifies the outcome regime governing an analysis run.
	Regime string

	// ScoreKind describes how a predictor's raw scores map into [0,1].
	ScoreKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All outcome regimes supported. The set is closed: estimator construction
// switches exhaustively over these values.
const (
	BinaryRegime      Regime = "binary"
	SurvivalRegime    Regime = "survival"
	CaseControlRegime Regime = "case-control"
)

// All score kinds supported.
const (
	ProbabilityKind ScoreKind = "probability" // default: already in [0,1]
	IndicatorKind   ScoreKind = "binary"      // 0/1 indicator, classification fixed across thresholds
	RawKind         ScoreKind = "raw"         // min-max rescaled into [0,1] before use
)

// Reference strategy names. These rows are always present in the result
// table alongside every predictor.
const (
	TreatAllStrategy  = "all"
	TreatNoneStrategy = "none"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run-history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidRegimes lists all valid outcome regimes.
var ValidRegimes = map[Regime]struct{}{
	BinaryRegime:      {},
	SurvivalRegime:    {},
	CaseControlRegime: {},
}

// ValidScoreKinds lists all valid score kinds.
var ValidScoreKinds = map[ScoreKind]struct{}{
	ProbabilityKind: {},
	IndicatorKind:   {},
	RawKind:         {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run-history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// IsReferenceStrategy reports whether name is one of the two fixed reference
// strategies rather than a supplied predictor.
func IsReferenceStrategy(name string) bool {
	return name == TreatAllStrategy || name == TreatNoneStrategy
}

package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// RiskLevel is the categorized band of an adjusted score.
	RiskLevel string

	// Presence records whether a species has been observed in a lake.
	Presence string

	// Parameter is one of the six user-facing water-quality parameters.
	Parameter string

	// RankOrder selects which score orders the prediction list.
	RankOrder string

	// ColumnKind is the value type of a classifier input column.
	ColumnKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Risk levels, lowest first.
const (
	LowRisk    RiskLevel = "Low"
	MediumRisk RiskLevel = "Medium"
	HighRisk   RiskLevel = "High"
)

// Presence values.
const (
	PresenceYes     Presence = "Yes"
	PresenceNo      Presence = "No"
	PresenceUnknown Presence = "Unknown"
)

// The six canonical parameters in their fixed enumeration order.
const (
	ParamPH              Parameter = "pH"
	ParamSalinity        Parameter = "Salinity"
	ParamDissolvedOxygen Parameter = "Dissolved Oxygen"
	ParamBOD             Parameter = "BOD"
	ParamTurbidity       Parameter = "Turbidity"
	ParamTemperature     Parameter = "Temperature"
)

// UnmatchedParameter labels model features that map to none of the six parameters.
const UnmatchedParameter Parameter = "unmatched"

// ParamUnknown is reported when no parameter carries any importance.
const ParamUnknown Parameter = "Unknown"

// Orderings for prediction lists.
const (
	AdjustedOrder RankOrder = "adjusted" // default
	RawOrder      RankOrder = "raw"
)

// Classifier column kinds.
const (
	NumericColumn     ColumnKind = "numeric"
	CategoricalColumn ColumnKind = "categorical"
)

// AllParameters lists the six parameters in canonical order.
var AllParameters = []Parameter{
	ParamPH,
	ParamSalinity,
	ParamDissolvedOxygen,
	ParamBOD,
	ParamTurbidity,
	ParamTemperature,
}

// AllRiskLevels lists risk levels from lowest to highest.
var AllRiskLevels = []RiskLevel{LowRisk, MediumRisk, HighRisk}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRankOrders lists all valid prediction orderings.
var ValidRankOrders = map[RankOrder]struct{}{
	AdjustedOrder: {},
	RawOrder:      {},
}

package model

// Default values applied by the query parser when the model omits or
// mangles a field.
const (
	DefaultWhere       = "1=1"
	DefaultOutFields   = "*"
	DefaultRecordCount = 20
	MinRecordCount     = 5
	MaxRecordCount     = 50
	DefaultSummary     = "Search results for your question."
)

// QueryParams is the validated output of the translation pipeline. Every
// field is always populated; OrderByFields is the only optional one and is
// signalled by the empty string.
type QueryParams struct {
	Where             string `json:"where"`
	OutFields         string `json:"outFields"`
	OrderByFields     string `json:"orderByFields,omitempty"`
	ResultRecordCount int    `json:"resultRecordCount"`
	Summary           string `json:"summary"`
}

// FeatureAttributes maps attribute names to scalar values (string, number
// or nil). Kept untyped: the set of attributes depends on the dataset.
type FeatureAttributes map[string]any

// FeatureGeometry is a point location in the requested spatial reference.
type FeatureGeometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Feature is one geographic record returned by the feature service.
type Feature struct {
	Attributes FeatureAttributes `json:"attributes"`
	Geometry   *FeatureGeometry  `json:"geometry,omitempty"`
}

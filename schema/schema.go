// Package schema has models, enums and output shapes for all parts of lakerisk.
package schema

import (
	"fmt"
	"math"
)

// EnvironmentVector holds the six water-quality parameters used for scoring.
// Field order matches the canonical parameter order.
type EnvironmentVector struct {
	PH              float64 `json:"ph" yaml:"ph"`                             // pH (0-14)
	Salinity        float64 `json:"salinity" yaml:"salinity"`                 // Salinity in ppt
	DissolvedOxygen float64 `json:"dissolved_oxygen" yaml:"dissolved_oxygen"` // Dissolved oxygen in mg/L
	BOD             float64 `json:"bod" yaml:"bod"`                           // Biochemical oxygen demand in mg/L
	Turbidity       float64 `json:"turbidity" yaml:"turbidity"`               // Turbidity in NTU
	Temperature     float64 `json:"temperature" yaml:"temperature"`           // Water temperature in °C
}

// Slice returns the vector as [pH, salinity, DO, BOD, turbidity, temperature].
func (v EnvironmentVector) Slice() []float64 {
	return []float64{v.PH, v.Salinity, v.DissolvedOxygen, v.BOD, v.Turbidity, v.Temperature}
}

// Value returns the component for a canonical parameter.
func (v EnvironmentVector) Value(p Parameter) float64 {
	switch p {
	case ParamPH:
		return v.PH
	case ParamSalinity:
		return v.Salinity
	case ParamDissolvedOxygen:
		return v.DissolvedOxygen
	case ParamBOD:
		return v.BOD
	case ParamTurbidity:
		return v.Turbidity
	case ParamTemperature:
		return v.Temperature
	default:
		return math.NaN()
	}
}

// Validate returns an error naming the first NaN or infinite component.
func (v EnvironmentVector) Validate() error {
	for _, p := range AllParameters {
		x := v.Value(p)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s must be a finite number (received %v)", p, x)
		}
	}
	return nil
}

// LakeBaseline is a reference lake with its known environmental conditions.
type LakeBaseline struct {
	Name      string            `json:"name" yaml:"name"`
	Region    string            `json:"region" yaml:"region"`
	Env       EnvironmentVector `json:"environment" yaml:"environment"`
	Latitude  float64           `json:"latitude" yaml:"latitude"`
	Longitude float64           `json:"longitude" yaml:"longitude"`
	Aliases   []string          `json:"aliases,omitempty" yaml:"aliases"`
}

// SpeciesRecord holds the biological traits of a species.
// Traits are opaque to scoring and only feed classifier input rows.
type SpeciesRecord struct {
	Species               string  `json:"species" yaml:"species"`
	CommonName            string  `json:"common_name" yaml:"common_name"`
	Kingdom               string  `json:"kingdom" yaml:"kingdom"`
	Phylum                string  `json:"phylum" yaml:"phylum"`
	Class                 string  `json:"class" yaml:"class"`
	Order                 string  `json:"order" yaml:"order"`
	Family                string  `json:"family" yaml:"family"`
	Genus                 string  `json:"genus" yaml:"genus"`
	Status                string  `json:"status" yaml:"status"`
	FeedingType           string  `json:"feeding_type" yaml:"feeding_type"`
	TempMax               float64 `json:"temp_max" yaml:"temp_max"`
	WeightMax             float64 `json:"weight_max" yaml:"weight_max"`
	LengthMax             float64 `json:"length_max" yaml:"length_max"`
	TempPrefMin           float64 `json:"temp_pref_min" yaml:"temp_pref_min"`
	TempPrefMax           float64 `json:"temp_pref_max" yaml:"temp_pref_max"`
	TempRangeMin          float64 `json:"temp_range_min" yaml:"temp_range_min"`
	TempRangeMax          float64 `json:"temp_range_max" yaml:"temp_range_max"`
	TrophicLvlEstimateMin float64 `json:"trophic_lvl_estimate_min" yaml:"trophic_lvl_estimate_min"`
	TrophicLvlEstimateMax float64 `json:"trophic_lvl_estimate_max" yaml:"trophic_lvl_estimate_max"`
	TrophicLvl            float64 `json:"trophic_lvl" yaml:"trophic_lvl"`
	FecundityMean         float64 `json:"fecundity_mean" yaml:"fecundity_mean"`
	FecundityMin          float64 `json:"fecundity_min" yaml:"fecundity_min"`
	FecundityMax          float64 `json:"fecundity_max" yaml:"fecundity_max"`
}

// PresenceRecord is one observation of a species in a waterbody.
// Present defaults to true when omitted.
type PresenceRecord struct {
	Species       string `json:"species" yaml:"species"`
	WaterbodyName string `json:"waterbody_name" yaml:"waterbody_name"`
	Present       *bool  `json:"present,omitempty" yaml:"present"`
}

// PredictionRecord is the scored result for one lake.
type PredictionRecord struct {
	LakeName      string    `json:"lake_name"`
	Region        string    `json:"region"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	RawScore      float64   `json:"raw_score"`      // Classifier probability
	Similarity    float64   `json:"similarity"`     // Environmental similarity in (0,1]
	AdjustedScore float64   `json:"adjusted_score"` // RawScore * Similarity
	RiskLevel     RiskLevel `json:"risk_level"`
	Presence      Presence  `json:"presence"`
}

// PredictionResult is the ranked output of one scoring request.
type PredictionResult struct {
	RunID       string             `json:"run_id"`
	Species     string             `json:"species"`
	Input       EnvironmentVector  `json:"input"`
	Predictions []PredictionRecord `json:"predictions"`
	Warning     string             `json:"warning,omitempty"`
}

// SpeciesInfo is the descriptive summary of a species.
type SpeciesInfo struct {
	Species          string           `json:"species"`
	CommonName       string           `json:"common_name"`
	Family           string           `json:"family"`
	Order            string           `json:"order"`
	Status           string           `json:"status"`
	FeedingType      string           `json:"feeding_type"`
	TrophicLevel     float64          `json:"trophic_level"`
	TemperatureRange TemperatureRange `json:"temperature_range"`
	LengthMax        float64          `json:"length_max"`
	WeightMax        float64          `json:"weight_max"`
	RecordsCount     int              `json:"records_count"`
}

// TemperatureRange is a preferred temperature band in °C.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SpeciesRanking is the best lake score for one species.
type SpeciesRanking struct {
	Species       string    `json:"species"`
	CommonName    string    `json:"common_name"`
	Family        string    `json:"family"`
	Status        string    `json:"status"`
	TopLake       string    `json:"top_lake"`
	AdjustedScore float64   `json:"adjusted_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
}

// ModelInfo describes the loaded classifier.
type ModelInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Source       string `json:"source"`
	Checksum     string `json:"checksum"`
	FeatureCount int    `json:"feature_count"`
}

// Overview summarizes the loaded reference data and model.
type Overview struct {
	TotalSpecies       int              `json:"total_species"`
	TotalRecords       int              `json:"total_records"`
	TotalLakes         int              `json:"total_lakes"`
	Model              ModelInfo        `json:"model"`
	StatusDistribution map[string]int   `json:"status_distribution"`
	MostContributing   MostContributing `json:"most_contributing"`
}

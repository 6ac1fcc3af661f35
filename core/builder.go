package core

import (
	"math"

	"github.com/huangsam/lakerisk/schema"
)

// RowBuilder assembles one classifier input row for a species and lake pair.
type RowBuilder struct {
	row schema.ClassifierRow
}

// NewRowBuilder is the starting point for building a classifier row.
func NewRowBuilder(sp schema.SpeciesRecord) *RowBuilder {
	return &RowBuilder{row: schema.ClassifierRow{
		Species:               sp.Species,
		CommonName:            sp.CommonName,
		Kingdom:               sp.Kingdom,
		Phylum:                sp.Phylum,
		Class:                 sp.Class,
		Order:                 sp.Order,
		Family:                sp.Family,
		Genus:                 sp.Genus,
		Status:                sp.Status,
		FeedingType:           sp.FeedingType,
		TempMax:               sp.TempMax,
		WeightMax:             sp.WeightMax,
		LengthMax:             sp.LengthMax,
		TempPrefMin:           sp.TempPrefMin,
		TempPrefMax:           sp.TempPrefMax,
		TempRangeMin:          sp.TempRangeMin,
		TempRangeMax:          sp.TempRangeMax,
		TrophicLvlEstimateMin: sp.TrophicLvlEstimateMin,
		TrophicLvlEstimateMax: sp.TrophicLvlEstimateMax,
		TrophicLvl:            sp.TrophicLvl,
		FecundityMean:         sp.FecundityMean,
		FecundityMin:          sp.FecundityMin,
		FecundityMax:          sp.FecundityMax,
	}}
}

// WithLake copies the lake baseline into both the min and max columns.
func (b *RowBuilder) WithLake(lake schema.LakeBaseline) *RowBuilder {
	r := &b.row
	r.WaterbodyName = lake.Name
	r.WbPHMin, r.WbPHMax = lake.Env.PH, lake.Env.PH
	r.WbSalinityMin, r.WbSalinityMax = lake.Env.Salinity, lake.Env.Salinity
	r.WbDOMin, r.WbDOMax = lake.Env.DissolvedOxygen, lake.Env.DissolvedOxygen
	r.WbBODMin, r.WbBODMax = lake.Env.BOD, lake.Env.BOD
	r.WbTurbidityMin, r.WbTurbidityMax = lake.Env.Turbidity, lake.Env.Turbidity
	r.WbTempMin, r.WbTempMax = lake.Env.Temperature, lake.Env.Temperature
	return b
}

// WithInput sets the user's environmental conditions.
func (b *RowBuilder) WithInput(env schema.EnvironmentVector) *RowBuilder {
	r := &b.row
	r.InputTemp = env.Temperature
	r.InputPH = env.PH
	r.InputSalinity = env.Salinity
	r.InputDO = env.DissolvedOxygen
	r.InputBOD = env.BOD
	r.InputTurbidity = env.Turbidity
	return b
}

// Derive computes the engineered columns. Call it after WithLake and WithInput.
func (b *RowBuilder) Derive() *RowBuilder {
	r := &b.row
	r.TempPrefRange = r.TempPrefMax - r.TempPrefMin
	r.WbPHRange = r.WbPHMax - r.WbPHMin
	r.WbTempRange = r.WbTempMax - r.WbTempMin
	r.TempInPrefRange = 0
	if r.InputTemp >= r.TempPrefMin && r.InputTemp <= r.TempPrefMax {
		r.TempInPrefRange = 1
	}
	r.FishPHPref = (r.WbPHMin + r.WbPHMax) / 2
	r.PHDifference = math.Abs(r.FishPHPref - r.InputPH)
	return b
}

// Build returns the finished row.
func (b *RowBuilder) Build() schema.ClassifierRow {
	return b.row
}

// buildRows returns one row per lake, in lake order.
func buildRows(sp schema.SpeciesRecord, lakes []schema.LakeBaseline, env schema.EnvironmentVector) []schema.ClassifierRow {
	rows := make([]schema.ClassifierRow, len(lakes))
	for i, lake := range lakes {
		rows[i] = NewRowBuilder(sp).WithLake(lake).WithInput(env).Derive().Build()
	}
	return rows
}

package schema

// ClassifierRow is one classifier input row: a species paired with a lake under user conditions.
type ClassifierRow struct {
	// Species traits
	Species               string  `json:"species"`
	CommonName            string  `json:"common_name"`
	Kingdom               string  `json:"kingdom"`
	Phylum                string  `json:"phylum"`
	Class                 string  `json:"class"`
	Order                 string  `json:"order"`
	Family                string  `json:"family"`
	Genus                 string  `json:"genus"`
	Status                string  `json:"status"`
	FeedingType           string  `json:"feeding_type"`
	TempMax               float64 `json:"temp_max"`
	WeightMax             float64 `json:"weight_max"`
	LengthMax             float64 `json:"length_max"`
	TempPrefMin           float64 `json:"temp_pref_min"`
	TempPrefMax           float64 `json:"temp_pref_max"`
	TempRangeMin          float64 `json:"temp_range_min"`
	TempRangeMax          float64 `json:"temp_range_max"`
	TrophicLvlEstimateMin float64 `json:"trophic_lvl_estimate_min"`
	TrophicLvlEstimateMax float64 `json:"trophic_lvl_estimate_max"`
	TrophicLvl            float64 `json:"trophic_lvl"`
	FecundityMean         float64 `json:"fecundity_mean"`
	FecundityMin          float64 `json:"fecundity_min"`
	FecundityMax          float64 `json:"fecundity_max"`

	// Lake baseline, min and max both carry the baseline value
	WaterbodyName   string  `json:"waterbody_name"`
	WbPHMin         float64 `json:"wb_ph_min"`
	WbPHMax         float64 `json:"wb_ph_max"`
	WbSalinityMin   float64 `json:"wb_salinity_min"`
	WbSalinityMax   float64 `json:"wb_salinity_max"`
	WbDOMin         float64 `json:"wb_do_min"`
	WbDOMax         float64 `json:"wb_do_max"`
	WbBODMin        float64 `json:"wb_bod_min"`
	WbBODMax        float64 `json:"wb_bod_max"`
	WbTurbidityMin  float64 `json:"wb_turbidity_min"`
	WbTurbidityMax  float64 `json:"wb_turbidity_max"`
	WbTempMin       float64 `json:"wb_temp_min"`
	WbTempMax       float64 `json:"wb_temp_max"`

	// User input
	InputTemp      float64 `json:"input_temp"`
	InputPH        float64 `json:"input_ph"`
	InputSalinity  float64 `json:"input_salinity"`
	InputDO        float64 `json:"input_do"`
	InputBOD       float64 `json:"input_bod"`
	InputTurbidity float64 `json:"input_turbidity"`

	// Derived
	TempPrefRange   float64 `json:"temp_pref_range"`
	WbPHRange       float64 `json:"wb_ph_range"`
	WbTempRange     float64 `json:"wb_temp_range"`
	TempInPrefRange float64 `json:"temp_in_pref_range"` // 1 or 0
	FishPHPref      float64 `json:"fish_ph_pref"`
	PHDifference    float64 `json:"ph_difference"`
}

// ClassifierColumn describes one named input column and how to read it from a row.
type ClassifierColumn struct {
	Name        string
	Kind        ColumnKind
	numeric     func(*ClassifierRow) float64
	categorical func(*ClassifierRow) string
}

// ClassifierColumns is the ordered classifier input schema.
var ClassifierColumns = []ClassifierColumn{
	cat("species", func(r *ClassifierRow) string { return r.Species }),
	cat("common_name", func(r *ClassifierRow) string { return r.CommonName }),
	cat("kingdom", func(r *ClassifierRow) string { return r.Kingdom }),
	cat("phylum", func(r *ClassifierRow) string { return r.Phylum }),
	cat("class", func(r *ClassifierRow) string { return r.Class }),
	cat("order", func(r *ClassifierRow) string { return r.Order }),
	cat("family", func(r *ClassifierRow) string { return r.Family }),
	cat("genus", func(r *ClassifierRow) string { return r.Genus }),
	cat("status", func(r *ClassifierRow) string { return r.Status }),
	cat("feeding_type", func(r *ClassifierRow) string { return r.FeedingType }),
	num("temp_max", func(r *ClassifierRow) float64 { return r.TempMax }),
	num("weight_max", func(r *ClassifierRow) float64 { return r.WeightMax }),
	num("length_max", func(r *ClassifierRow) float64 { return r.LengthMax }),
	num("temp_pref_min", func(r *ClassifierRow) float64 { return r.TempPrefMin }),
	num("temp_pref_max", func(r *ClassifierRow) float64 { return r.TempPrefMax }),
	num("temp_range_min", func(r *ClassifierRow) float64 { return r.TempRangeMin }),
	num("temp_range_max", func(r *ClassifierRow) float64 { return r.TempRangeMax }),
	num("trophic_lvl_estimate_min", func(r *ClassifierRow) float64 { return r.TrophicLvlEstimateMin }),
	num("trophic_lvl_estimate_max", func(r *ClassifierRow) float64 { return r.TrophicLvlEstimateMax }),
	num("trophic_lvl", func(r *ClassifierRow) float64 { return r.TrophicLvl }),
	num("fecundity_mean", func(r *ClassifierRow) float64 { return r.FecundityMean }),
	num("fecundity_min", func(r *ClassifierRow) float64 { return r.FecundityMin }),
	num("fecundity_max", func(r *ClassifierRow) float64 { return r.FecundityMax }),
	cat("waterbody_name", func(r *ClassifierRow) string { return r.WaterbodyName }),
	num("wb_ph_min", func(r *ClassifierRow) float64 { return r.WbPHMin }),
	num("wb_ph_max", func(r *ClassifierRow) float64 { return r.WbPHMax }),
	num("wb_salinity_min", func(r *ClassifierRow) float64 { return r.WbSalinityMin }),
	num("wb_salinity_max", func(r *ClassifierRow) float64 { return r.WbSalinityMax }),
	num("wb_do_min", func(r *ClassifierRow) float64 { return r.WbDOMin }),
	num("wb_do_max", func(r *ClassifierRow) float64 { return r.WbDOMax }),
	num("wb_bod_min", func(r *ClassifierRow) float64 { return r.WbBODMin }),
	num("wb_bod_max", func(r *ClassifierRow) float64 { return r.WbBODMax }),
	num("wb_turbidity_min", func(r *ClassifierRow) float64 { return r.WbTurbidityMin }),
	num("wb_turbidity_max", func(r *ClassifierRow) float64 { return r.WbTurbidityMax }),
	num("wb_temp_min", func(r *ClassifierRow) float64 { return r.WbTempMin }),
	num("wb_temp_max", func(r *ClassifierRow) float64 { return r.WbTempMax }),
	num("input_temp", func(r *ClassifierRow) float64 { return r.InputTemp }),
	num("input_ph", func(r *ClassifierRow) float64 { return r.InputPH }),
	num("input_salinity", func(r *ClassifierRow) float64 { return r.InputSalinity }),
	num("input_do", func(r *ClassifierRow) float64 { return r.InputDO }),
	num("input_bod", func(r *ClassifierRow) float64 { return r.InputBOD }),
	num("input_turbidity", func(r *ClassifierRow) float64 { return r.InputTurbidity }),
	num("temp_pref_range", func(r *ClassifierRow) float64 { return r.TempPrefRange }),
	num("wb_ph_range", func(r *ClassifierRow) float64 { return r.WbPHRange }),
	num("wb_temp_range", func(r *ClassifierRow) float64 { return r.WbTempRange }),
	num("temp_in_pref_range", func(r *ClassifierRow) float64 { return r.TempInPrefRange }),
	num("fish_ph_pref", func(r *ClassifierRow) float64 { return r.FishPHPref }),
	num("ph_difference", func(r *ClassifierRow) float64 { return r.PHDifference }),
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(ClassifierColumns))
	for i, c := range ClassifierColumns {
		idx[c.Name] = i
	}
	return idx
}()

func num(name string, fn func(*ClassifierRow) float64) ClassifierColumn {
	return ClassifierColumn{Name: name, Kind: NumericColumn, numeric: fn}
}

func cat(name string, fn func(*ClassifierRow) string) ClassifierColumn {
	return ClassifierColumn{Name: name, Kind: CategoricalColumn, categorical: fn}
}

// LookupColumn returns the column definition for name.
func LookupColumn(name string) (ClassifierColumn, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return ClassifierColumn{}, false
	}
	return ClassifierColumns[i], true
}

// ClassifierColumnNames returns every column name in schema order.
func ClassifierColumnNames() []string {
	names := make([]string, len(ClassifierColumns))
	for i, c := range ClassifierColumns {
		names[i] = c.Name
	}
	return names
}

// Numeric reads a numeric column. The second result is false for unknown or categorical columns.
func (r *ClassifierRow) Numeric(name string) (float64, bool) {
	c, ok := LookupColumn(name)
	if !ok || c.Kind != NumericColumn {
		return 0, false
	}
	return c.numeric(r), true
}

// Categorical reads a categorical column. The second result is false for unknown or numeric columns.
func (r *ClassifierRow) Categorical(name string) (string, bool) {
	c, ok := LookupColumn(name)
	if !ok || c.Kind != CategoricalColumn {
		return "", false
	}
	return c.categorical(r), true
}

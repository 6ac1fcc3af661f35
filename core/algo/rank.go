package algo

import (
	"sort"

	"github.com/huangsam/lakerisk/schema"
)

// RankPredictions sorts records by score in descending order, breaking ties by lake name,
// and returns the top 'limit' records. A limit of zero or less keeps every record.
func RankPredictions(records []schema.PredictionRecord, order schema.RankOrder, limit int) []schema.PredictionRecord {
	score := func(r schema.PredictionRecord) float64 { return r.AdjustedScore }
	if order == schema.RawOrder {
		score = func(r schema.PredictionRecord) float64 { return r.RawScore }
	}
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := score(records[i]), score(records[j])
		if si != sj {
			return si > sj
		}
		return records[i].LakeName < records[j].LakeName
	})
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

// RankSpecies sorts species rankings by adjusted score in descending order, breaking ties
// by species name, and returns the top 'limit' entries.
func RankSpecies(rankings []schema.SpeciesRanking, limit int) []schema.SpeciesRanking {
	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].AdjustedScore != rankings[j].AdjustedScore {
			return rankings[i].AdjustedScore > rankings[j].AdjustedScore
		}
		return rankings[i].Species < rankings[j].Species
	})
	if limit > 0 && len(rankings) > limit {
		return rankings[:limit]
	}
	return rankings
}

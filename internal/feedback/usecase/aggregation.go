package usecase

import (
	"math"

	"pgfeedback/internal/feedback/domain/model"
)

// DefaultRecentLimit caps the recent-ratings, recent-suggestions and
// low-ratings lists on the dashboard.
const DefaultRecentLimit = 5

// lowRatingThreshold marks ratings that flag a meal for attention.
const lowRatingThreshold = 2

// AggregationEngine derives dashboard statistics from collection snapshots.
// Compute is a pure function of its inputs: it keeps no state between calls
// and recomputes everything from scratch on every snapshot, so repeated
// calls on the same snapshots yield identical results.
type AggregationEngine struct {
	recentLimit int
}

// NewAggregationEngine creates an engine with the default list caps.
func NewAggregationEngine() *AggregationEngine {
	return &AggregationEngine{recentLimit: DefaultRecentLimit}
}

// NewAggregationEngineWithLimit creates an engine with a custom cap on the
// recent and low-rating lists.
func NewAggregationEngineWithLimit(recentLimit int) *AggregationEngine {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &AggregationEngine{recentLimit: recentLimit}
}

// Compute derives statistics from recency-ordered snapshots. Both inputs are
// read only; the returned stats share no mutable state with them beyond the
// listed elements themselves.
func (e *AggregationEngine) Compute(ratings []model.Rating, suggestions []model.Suggestion) model.DerivedStats {
	stats := model.DerivedStats{
		TotalRatings:      len(ratings),
		AverageRating:     averageRating(ratings),
		TotalSuggestions:  len(suggestions),
		CountsByMealType:  map[model.MealType]int{},
		CountsByCategory:  map[model.Category]int{},
		RecentRatings:     firstRatings(ratings, e.recentLimit),
		RecentSuggestions: firstSuggestions(suggestions, e.recentLimit),
		LowRatings:        lowRatings(ratings, e.recentLimit),
	}

	for _, r := range ratings {
		stats.CountsByMealType[r.MealType]++
	}
	for _, s := range suggestions {
		stats.CountsByCategory[s.Category]++
	}

	return stats
}

// averageRating is the mean rating value rounded to one decimal, 0 for an
// empty snapshot.
func averageRating(ratings []model.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10
}

func firstRatings(ratings []model.Rating, limit int) []model.Rating {
	if len(ratings) > limit {
		ratings = ratings[:limit]
	}
	out := make([]model.Rating, len(ratings))
	copy(out, ratings)
	return out
}

func firstSuggestions(suggestions []model.Suggestion, limit int) []model.Suggestion {
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	out := make([]model.Suggestion, len(suggestions))
	copy(out, suggestions)
	return out
}

// lowRatings returns ratings of two stars or below in snapshot order, capped.
func lowRatings(ratings []model.Rating, limit int) []model.Rating {
	out := make([]model.Rating, 0, limit)
	for _, r := range ratings {
		if r.Rating <= lowRatingThreshold {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

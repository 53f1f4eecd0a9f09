// Package aggregate derives the display-ready summary from stage counts. Pure
// functions only; the board recomputes the summary after every store mutation.
package aggregate

import "github.com/nlicea/orderdeck/internal/order"

// Summary is the totals view rendered in the board's card strip.
type Summary struct {
	Total    int
	PerStage map[order.Stage]int
}

// Summarize folds per-bucket counts into a Summary. A nil or empty input
// yields an all-zero summary, never an error.
func Summarize(counts map[order.Stage]int) Summary {
	summary := Summary{PerStage: make(map[order.Stage]int, len(order.Buckets()))}
	for _, stage := range order.Buckets() {
		n := counts[stage]
		summary.PerStage[stage] = n
		summary.Total += n
	}
	return summary
}

package domain

import "sort"

// Feed item priorities, high first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// FeedItem is one entry of a user's live feed.
type FeedItem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Action   string `json:"action"`
	URL      string `json:"url,omitempty"`
	Priority string `json:"priority"`
}

var priorityRank = map[string]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// PriorityRank returns the numeric rank of a priority. Unknown priorities
// rank below low so malformed items sink to the bottom.
func PriorityRank(p string) int {
	return priorityRank[p]
}

// SortFeed orders items descending by priority. The sort is stable so ties
// keep generator-defined order.
func SortFeed(items []FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return PriorityRank(items[i].Priority) > PriorityRank(items[j].Priority)
	})
}

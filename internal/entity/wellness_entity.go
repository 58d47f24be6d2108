package entity

// TagPriorityCount is one row of the (tag, priority) grouping step.
type TagPriorityCount struct {
	IssueTag string
	Priority Priority
	Count    int
}

type PriorityCount struct {
	Priority Priority
	Count    int
}

type WellnessTag struct {
	IssueTag      string
	TotalSessions int
	Priorities    []PriorityCount
}

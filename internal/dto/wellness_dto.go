package dto

type PriorityCountResponse struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type WellnessTagResponse struct {
	IssueTag      string                  `json:"issueTag"`
	TotalSessions int                     `json:"totalSessions"`
	Priorities    []PriorityCountResponse `json:"priorities"`
}

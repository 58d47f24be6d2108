package entity

// IssueTags is the controlled vocabulary counselors classify sessions with.
var IssueTags = []string{
	"Academic Stress", "Exam Anxiety", "Career Confusion",
	"Family Conflict", "Relationship Issues", "Peer Pressure",
	"Low Self-Esteem", "Sleep Problems", "Grief/Loss",
	"Depression", "Anxiety Disorder", "Substance Abuse",
	"Adjustment Issues", "Financial Stress", "Isolation/Loneliness",
	"Bullying/Harassment", "Time Management", "Other Mental Health",
	"Physical Health Concern", "General Wellness Check",
}

var issueTagSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(IssueTags))
	for _, t := range IssueTags {
		m[t] = struct{}{}
	}
	return m
}()

func IsIssueTag(tag string) bool {
	_, ok := issueTagSet[tag]
	return ok
}

// InvalidIssueTags returns the tags outside the vocabulary, in input order.
func InvalidIssueTags(tags []string) []string {
	var invalid []string
	for _, t := range tags {
		if !IsIssueTag(t) {
			invalid = append(invalid, t)
		}
	}
	return invalid
}

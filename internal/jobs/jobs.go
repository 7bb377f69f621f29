package jobs

import "context"

// Candidate is one job posting being ranked against a resume. Known
// attributes get named fields; anything else a source reports lands in
// Extra. Candidates are read-only once fetched.
type Candidate struct {
	Title       string            `json:"title"`
	Company     string            `json:"company"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Salary      string            `json:"salary,omitempty"`
	URL         string            `json:"url,omitempty"`
	Source      string            `json:"source,omitempty"`
	PostedDate  string            `json:"posted_date,omitempty"`
	JobType     string            `json:"job_type,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Source fetches candidate postings from an external job board. It may
// return fewer candidates than requested; an empty result is valid.
type Source interface {
	Fetch(ctx context.Context, location, keywords string, maxCount int) ([]Candidate, error)
}

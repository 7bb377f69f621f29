// Package filter narrows fetched candidates by structured criteria before
// any embedding work is spent on them.
package filter

import (
	"regexp"
	"strings"

	"job-match/internal/jobs"
)

// Criteria is the post-fetch predicate. Zero-valued fields are skipped.
type Criteria struct {
	MinSalary        int      `json:"min_salary,omitempty"`
	ExperienceLevels []string `json:"experience_levels,omitempty"`
	JobTypes         []string `json:"job_types,omitempty"`
	RequiredSkills   []string `json:"required_skills,omitempty"`
}

// IsZero reports whether no criteria are set.
func (c Criteria) IsZero() bool {
	return c.MinSalary <= 0 &&
		len(c.ExperienceLevels) == 0 &&
		len(c.JobTypes) == 0 &&
		len(c.RequiredSkills) == 0
}

var experiencePatterns = map[string]*regexp.Regexp{
	"Entry Level": regexp.MustCompile(`(?i)\b(entry|junior|jr|graduate|intern)\b`),
	"Junior":      regexp.MustCompile(`(?i)\b(junior|jr)\b`),
	"Mid-Level":   regexp.MustCompile(`(?i)\b(mid|middle|intermediate)\b`),
	"Senior":      regexp.MustCompile(`(?i)\b(senior|sr)\b`),
	"Lead":        regexp.MustCompile(`(?i)\b(lead|principal|staff)\b`),
	"Principal":   regexp.MustCompile(`(?i)\b(principal|staff|architect)\b`),
	"Executive":   regexp.MustCompile(`(?i)\b(executive|director|vp|cto|ceo|head)\b`),
}

var salaryNumberPattern = regexp.MustCompile(`\$?[\d,]+`)

// Apply filters candidates by each set criterion in turn. An empty result
// is a valid outcome the caller must handle.
func Apply(candidates []jobs.Candidate, c Criteria) []jobs.Candidate {
	filtered := candidates
	if c.MinSalary > 0 {
		filtered = bySalary(filtered, c.MinSalary)
	}
	if len(c.ExperienceLevels) > 0 {
		filtered = byExperience(filtered, c.ExperienceLevels)
	}
	if len(c.JobTypes) > 0 {
		filtered = byJobType(filtered, c.JobTypes)
	}
	if len(c.RequiredSkills) > 0 {
		filtered = bySkills(filtered, c.RequiredSkills)
	}
	return filtered
}

// bySalary keeps candidates whose minimum advertised salary meets the
// floor. Candidates with no salary info pass; absence is not a rejection.
func bySalary(candidates []jobs.Candidate, minSalary int) []jobs.Candidate {
	var out []jobs.Candidate
	for _, c := range candidates {
		if c.Salary == "" || c.Salary == "N/A" {
			out = append(out, c)
			continue
		}
		m := salaryNumberPattern.FindString(c.Salary)
		if m == "" {
			out = append(out, c)
			continue
		}
		digits := strings.NewReplacer("$", "", ",", "").Replace(m)
		value := 0
		for _, d := range digits {
			if d < '0' || d > '9' {
				value = -1
				break
			}
			value = value*10 + int(d-'0')
		}
		if value < 0 || value >= minSalary {
			out = append(out, c)
		}
	}
	return out
}

func byExperience(candidates []jobs.Candidate, levels []string) []jobs.Candidate {
	var out []jobs.Candidate
	for _, c := range candidates {
		text := c.Title + " " + c.Description
		for _, level := range levels {
			if p, ok := experiencePatterns[level]; ok && p.MatchString(text) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func byJobType(candidates []jobs.Candidate, types []string) []jobs.Candidate {
	normalized := make([]string, len(types))
	for i, t := range types {
		normalized[i] = strings.ToLower(t)
	}

	var out []jobs.Candidate
	for _, c := range candidates {
		jobType := strings.ToLower(c.JobType)
		if jobType == "" {
			jobType = "full-time"
		}
		text := strings.ToLower(c.Title + " " + c.Description)
		for _, t := range normalized {
			if strings.Contains(jobType, t) || strings.Contains(text, t) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// bySkills keeps candidates mentioning at least one required skill as a
// whole word in title or description.
func bySkills(candidates []jobs.Candidate, skills []string) []jobs.Candidate {
	var patterns []*regexp.Regexp
	for _, skill := range skills {
		skill = strings.TrimSpace(strings.ToLower(skill))
		if skill == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(skill)+`\b`))
	}
	if len(patterns) == 0 {
		return candidates
	}

	var out []jobs.Candidate
	for _, c := range candidates {
		text := strings.ToLower(c.Title + " " + c.Description)
		for _, p := range patterns {
			if p.MatchString(text) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

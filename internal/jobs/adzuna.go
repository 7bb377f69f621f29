package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs/us/search"
	resultsPerPage = 50
)

// AdzunaSource fetches postings from the Adzuna search API, which
// aggregates boards like Indeed and Monster.
type AdzunaSource struct {
	appID   string
	apiKey  string
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewAdzunaSource creates a job source backed by the Adzuna API.
func NewAdzunaSource(appID, apiKey string, log *slog.Logger) (*AdzunaSource, error) {
	appID = strings.TrimSpace(appID)
	apiKey = strings.TrimSpace(apiKey)
	if appID == "" || apiKey == "" {
		return nil, fmt.Errorf("adzuna app id and api key required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AdzunaSource{
		appID:   appID,
		apiKey:  apiKey,
		baseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With("component", "adzuna"),
	}, nil
}

// Fetch pages through search results until maxCount candidates are
// collected or the results run out. A failure after the first page logs
// and returns the candidates fetched so far.
func (s *AdzunaSource) Fetch(ctx context.Context, location, keywords string, maxCount int) ([]Candidate, error) {
	var all []Candidate
	for page := 1; len(all) < maxCount; page++ {
		s.log.Info("fetching jobs", "page", page, "fetched", len(all))

		results, err := s.fetchPage(ctx, page, location, keywords, maxCount-len(all))
		if err != nil {
			if len(all) == 0 {
				return nil, fmt.Errorf("adzuna fetch failed: %w", err)
			}
			s.log.Warn("pagination aborted, returning partial results", "page", page, "fetched", len(all), "err", err)
			break
		}
		if len(results) == 0 {
			break
		}
		for _, job := range results {
			all = append(all, job.toCandidate())
		}
		// A short page means the last one.
		if len(results) < resultsPerPage {
			break
		}
	}
	if len(all) > maxCount {
		all = all[:maxCount]
	}
	return all, nil
}

func (s *AdzunaSource) fetchPage(ctx context.Context, page int, location, keywords string, remaining int) ([]adzunaJob, error) {
	params := url.Values{}
	params.Set("app_id", s.appID)
	params.Set("app_key", s.apiKey)
	params.Set("results_per_page", strconv.Itoa(min(resultsPerPage, remaining)))
	params.Set("what", keywords)
	params.Set("where", location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d?%s", s.baseURL, page, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Results []adzunaJob `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

type adzunaJob struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	ContractType string `json:"contract_type"`
	ContractTime string `json:"contract_time"`
	RedirectURL  string `json:"redirect_url"`
	Created      string `json:"created"`
}

func (j adzunaJob) toCandidate() Candidate {
	c := Candidate{
		Title:       orNA(j.Title),
		Company:     orNA(j.Company.DisplayName),
		Location:    orNA(j.Location.DisplayName),
		Description: j.Description,
		Salary:      formatSalary(j.SalaryMin, j.SalaryMax),
		URL:         j.RedirectURL,
		Source:      "Adzuna",
		PostedDate:  j.Created,
		JobType:     parseJobType(j.ContractType, j.ContractTime),
	}
	if c.PostedDate == "" {
		c.PostedDate = time.Now().Format("2006-01-02")
	}
	return c
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatSalary(minSalary, maxSalary float64) string {
	switch {
	case minSalary > 0 && maxSalary > 0:
		return fmt.Sprintf("$%s - $%s", groupThousands(minSalary), groupThousands(maxSalary))
	case minSalary > 0:
		return fmt.Sprintf("$%s+", groupThousands(minSalary))
	default:
		return ""
	}
}

// groupThousands renders 125000 as "125,000".
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

var jobTypeNames = map[string]string{
	"full_time":  "Full-time",
	"part_time":  "Part-time",
	"contract":   "Contract",
	"temporary":  "Temporary",
	"permanent":  "Permanent",
	"internship": "Internship",
}

// parseJobType prefers contract_type, falls back to contract_time, and
// defaults to Full-time.
func parseJobType(contractType, contractTime string) string {
	if t, ok := jobTypeNames[contractType]; ok {
		return t
	}
	if t, ok := jobTypeNames[contractTime]; ok {
		return t
	}
	return "Full-time"
}

package job

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// SkillSet is a set of normalized skill tokens extracted from a resume.
// It is sorted and deduplicated by the ingest layer and treated as immutable.
type SkillSet []string

func (s SkillSet) Len() int { return len(s) }

// Listing is a single scraped job posting. Immutable after ingest;
// re-ingesting the same identity refreshes the description only.
type Listing struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Description  string `json:"description,omitempty"`
	SourceURL    string `json:"source_url"`
	PlatformHint string `json:"platform_hint,omitempty"`
}

// ListingID derives the stable job identity from the listing's identity
// fields, so repeated scraping of the same posting never creates a
// duplicate lifecycle record.
func ListingID(sourceURL, title, company string) string {
	sum := sha256.Sum256([]byte(sourceURL + "\x00" + title + "\x00" + company))
	return fmt.Sprintf("%x", sum[:8])
}

// ScoredJob is a listing together with its relevance score against a
// skill set. Recomputed only by the scorer, never hand-edited.
type ScoredJob struct {
	Listing

	// Score is in [0, 1].
	Score         float64   `json:"score"`
	MatchedSkills []string  `json:"matched_skills"`
	ScoredAt      time.Time `json:"scored_at"`
}

// HistoryEntry is one append-only element of a record's state history.
type HistoryEntry struct {
	State  State     `json:"state"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// ApplicationRecord is the lifecycle-bearing entity tracked by the store,
// one per job id. State always equals the last history entry's state.
type ApplicationRecord struct {
	JobID        string `json:"job_id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Description  string `json:"description,omitempty"`
	SourceURL    string `json:"source_url"`
	PlatformHint string `json:"platform_hint,omitempty"`

	// Score is nil until the scorer has run at least once for this job.
	// The store never synthesizes a default.
	Score         *float64   `json:"score,omitempty"`
	MatchedSkills []string   `json:"matched_skills,omitempty"`
	ScoredAt      *time.Time `json:"scored_at,omitempty"`

	State     State          `json:"state"`
	History   []HistoryEntry `json:"state_history"`
	LastError string         `json:"last_error,omitempty"`
	Insight   string         `json:"insight,omitempty"`
}

// Scored reports whether the scorer has produced a score for this record.
func (r *ApplicationRecord) Scored() bool {
	return r.Score != nil
}

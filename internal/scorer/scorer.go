// Package scorer ranks job listings against a candidate's skill set.
// Scoring is pure and deterministic: no storage, no network, and it never
// fails on malformed listing text.
package scorer

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"jobagent/internal/job"
)

const (
	// A skill found in the title counts double a description match.
	titleWeight       = 2.0
	descriptionWeight = 1.0
)

var tagRe = regexp.MustCompile(`(?s)<[^>]*>`)

// Score computes the relevance of a listing for the given skill set.
// The score is bounded to [0, 1]: the sum of per-skill weights divided by
// the maximum possible weight (every skill matched in the title).
func Score(skills job.SkillSet, l job.Listing) job.ScoredJob {
	title := strings.ToLower(l.Title)
	description := strings.ToLower(stripHTML(l.Description))

	var weight float64
	matched := make([]string, 0, len(skills))

	for _, skill := range skills {
		if skill == "" {
			continue
		}
		switch {
		case hasToken(title, skill):
			weight += titleWeight
			matched = append(matched, skill)
		case hasToken(description, skill):
			weight += descriptionWeight
			matched = append(matched, skill)
		}
	}

	score := 0.0
	if len(skills) > 0 {
		score = weight / (titleWeight * float64(len(skills)))
	}
	if score > 1 {
		score = 1
	}

	sort.Strings(matched)

	return job.ScoredJob{
		Listing:       l,
		Score:         score,
		MatchedSkills: matched,
		ScoredAt:      time.Now().UTC(),
	}
}

// Rank orders scored jobs by score descending, ties broken by absolute
// match count descending, then alphabetical job id.
func Rank(jobs []job.ScoredJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Score != jobs[j].Score {
			return jobs[i].Score > jobs[j].Score
		}
		if len(jobs[i].MatchedSkills) != len(jobs[j].MatchedSkills) {
			return len(jobs[i].MatchedSkills) > len(jobs[j].MatchedSkills)
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// stripHTML drops tag remnants left over from scraping and decodes
// entities, so descriptions can be matched as plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(tagRe.ReplaceAllString(s, " "))
}

// hasToken reports whether skill occurs in text as a whole token. Skills
// like "c++" or "c#" end in non-word runes, so a plain \b regexp would
// miss them; boundaries are checked directly instead.
func hasToken(text, skill string) bool {
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], skill)
		if idx < 0 {
			return false
		}
		idx += start

		if boundaryBefore(text, idx) && boundaryAfter(text, idx+len(skill)) {
			return true
		}
		start = idx + 1
	}
	return false
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[idx:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

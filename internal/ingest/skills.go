// Package ingest holds the boundary with the external skill/listing
// suppliers: a skill-set loader and a lazy, restartable listing source.
// The core consumes the typed values only and never reaches into how
// they were produced.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"jobagent/internal/job"
)

// synonyms folds common spelling variants onto one canonical token so the
// scorer matches a resume saying "golang" against a posting saying "go".
var synonyms = map[string]string{
	"golang":              "go",
	"reactjs":             "react",
	"react.js":            "react",
	"nodejs":              "node.js",
	"node":                "node.js",
	"js":                  "javascript",
	"ts":                  "typescript",
	"postgres":            "postgresql",
	"k8s":                 "kubernetes",
	"py":                  "python",
	"tf":                  "terraform",
	"es":                  "elasticsearch",
	"gcloud":              "gcp",
	"amazon web services": "aws",
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSkill lowercases a raw skill token, strips diacritics and
// surrounding whitespace, and folds known synonyms. Returns "" for tokens
// that normalize away entirely.
func NormalizeSkill(raw string) string {
	folded, _, err := transform.String(foldMarks, raw)
	if err != nil {
		folded = raw
	}
	token := strings.ToLower(strings.TrimSpace(folded))
	if canonical, ok := synonyms[token]; ok {
		return canonical
	}
	return token
}

// NormalizeSkills builds an immutable skill set: normalized, deduplicated
// and sorted.
func NormalizeSkills(raw []string) job.SkillSet {
	seen := make(map[string]struct{}, len(raw))
	set := make(job.SkillSet, 0, len(raw))
	for _, r := range raw {
		token := NormalizeSkill(r)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		set = append(set, token)
	}
	sort.Strings(set)
	return set
}

// LoadSkills reads a skills file: one skill per line, blank lines and
// lines starting with # ignored.
func LoadSkills(path string) (job.SkillSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening skills file: %w", err)
	}
	defer file.Close()

	var raw []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading skills file: %w", err)
	}

	set := NormalizeSkills(raw)
	if set.Len() == 0 {
		return nil, fmt.Errorf("skills file %q contains no skills", path)
	}
	return set, nil
}

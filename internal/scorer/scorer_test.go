package scorer

import (
	"testing"

	"jobagent/internal/job"
)

func listing(title, description string) job.Listing {
	return job.Listing{
		ID:          job.ListingID("https://example.com/job/1", title, "Acme"),
		Title:       title,
		Company:     "Acme",
		Description: description,
		SourceURL:   "https://example.com/job/1",
	}
}

func TestScoreBoundsAndDeterminism(t *testing.T) {
	skills := job.SkillSet{"python", "react", "sql"}
	l := listing("Senior Python Developer", "We use SQL and Django daily.")

	first := Score(skills, l)
	second := Score(skills, l)

	if first.Score < 0 || first.Score > 1 {
		t.Fatalf("score out of bounds: %v", first.Score)
	}
	if first.Score != second.Score {
		t.Fatalf("score not deterministic: %v vs %v", first.Score, second.Score)
	}
	if len(first.MatchedSkills) != len(second.MatchedSkills) {
		t.Fatalf("matched skills not deterministic")
	}
}

func TestScoreTitleWeight(t *testing.T) {
	skills := job.SkillSet{"python", "react", "sql"}
	l := listing("Senior Python Developer", "We use SQL and Django daily.")

	scored := Score(skills, l)

	// python in title (weight 2) + sql in description (weight 1),
	// normalized by 2 * |skills| = 6.
	want := 3.0 / 6.0
	if scored.Score != want {
		t.Fatalf("expected score %v, got %v", want, scored.Score)
	}

	wantMatched := []string{"python", "sql"}
	if len(scored.MatchedSkills) != len(wantMatched) {
		t.Fatalf("expected matched %v, got %v", wantMatched, scored.MatchedSkills)
	}
	for i, skill := range wantMatched {
		if scored.MatchedSkills[i] != skill {
			t.Fatalf("expected matched %v, got %v", wantMatched, scored.MatchedSkills)
		}
	}

	titleOnly := Score(job.SkillSet{"python"}, listing("Python Engineer", ""))
	descOnly := Score(job.SkillSet{"python"}, listing("Engineer", "python shop"))
	if titleOnly.Score <= descOnly.Score {
		t.Fatalf("title match (%v) should outweigh description match (%v)", titleOnly.Score, descOnly.Score)
	}
}

func TestScoreWholeTokensOnly(t *testing.T) {
	scored := Score(job.SkillSet{"go"}, listing("Django Developer", "We love Google Sheets."))
	if len(scored.MatchedSkills) != 0 {
		t.Fatalf("expected no matches inside larger words, got %v", scored.MatchedSkills)
	}

	scored = Score(job.SkillSet{"go"}, listing("Go Developer", ""))
	if len(scored.MatchedSkills) != 1 {
		t.Fatalf("expected go to match as a token, got %v", scored.MatchedSkills)
	}
}

func TestScoreSymbolSkills(t *testing.T) {
	scored := Score(job.SkillSet{"c++"}, listing("C++ Engineer", ""))
	if scored.Score == 0 {
		t.Fatalf("expected c++ to match in title")
	}

	scored = Score(job.SkillSet{"c#"}, listing("Backend Engineer", "Experience with C# and .NET"))
	if len(scored.MatchedSkills) != 1 {
		t.Fatalf("expected c# to match in description, got %v", scored.MatchedSkills)
	}
}

func TestScoreMalformedInput(t *testing.T) {
	tests := []struct {
		name        string
		description string
	}{
		{"empty", ""},
		{"html remnants", "<ul><li>Python &amp; SQL</li><li>unclosed <b>tag"},
		{"non ascii", "требуется python разработчик 要求"},
		{"only tags", "<div><span></span></div>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := Score(job.SkillSet{"python", "sql"}, listing("Engineer", tt.description))
			if scored.Score < 0 || scored.Score > 1 {
				t.Fatalf("score out of bounds: %v", scored.Score)
			}
		})
	}

	// Entities and tags are stripped before matching.
	scored := Score(job.SkillSet{"python", "sql"}, listing("Engineer", "<ul><li>Python &amp; SQL</li></ul>"))
	if len(scored.MatchedSkills) != 2 {
		t.Fatalf("expected both skills matched in html description, got %v", scored.MatchedSkills)
	}
}

func TestScoreEmptySkillSet(t *testing.T) {
	scored := Score(job.SkillSet{}, listing("Python Developer", "python"))
	if scored.Score != 0 {
		t.Fatalf("expected zero score for empty skill set, got %v", scored.Score)
	}
}

func TestRankOrdering(t *testing.T) {
	jobs := []job.ScoredJob{
		{Listing: job.Listing{ID: "bbb"}, Score: 0.5, MatchedSkills: []string{"go"}},
		{Listing: job.Listing{ID: "aaa"}, Score: 0.5, MatchedSkills: []string{"go"}},
		{Listing: job.Listing{ID: "ccc"}, Score: 0.5, MatchedSkills: []string{"go", "sql"}},
		{Listing: job.Listing{ID: "ddd"}, Score: 0.9, MatchedSkills: []string{"go"}},
	}

	Rank(jobs)

	wantOrder := []string{"ddd", "ccc", "aaa", "bbb"}
	for i, id := range wantOrder {
		if jobs[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, jobs[i].ID)
		}
	}
}

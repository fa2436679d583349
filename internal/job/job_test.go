package job

import "testing"

func TestListingIDDeterministic(t *testing.T) {
	a := ListingID("https://example.com/job/1", "Go Developer", "Acme")
	b := ListingID("https://example.com/job/1", "Go Developer", "Acme")
	if a != b {
		t.Fatalf("expected identical ids, got %q and %q", a, b)
	}

	c := ListingID("https://example.com/job/2", "Go Developer", "Acme")
	if a == c {
		t.Fatalf("expected different ids for different source urls")
	}

	// Concatenation of identity fields must not be ambiguous.
	d := ListingID("https://example.com/job/1", "Go", "DeveloperAcme")
	if a == d {
		t.Fatalf("expected different ids for shifted field boundaries")
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from    State
		to      State
		allowed bool
	}{
		{StateFound, StateApplying, true},
		{StateFound, StateRejected, true},
		{StateFound, StateApplied, false},
		{StateFound, StateFailed, false},
		{StateApplying, StateApplied, true},
		{StateApplying, StateFailed, true},
		{StateApplying, StateFound, false},
		{StateApplying, StateRejected, false},
		{StateRejected, StateFound, true},
		{StateRejected, StateApplying, false},
		{StateFailed, StateApplying, true},
		{StateFailed, StateFound, false},
		{StateApplied, StateApplying, false},
		{StateApplied, StateFound, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected allowed=%v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestParseState(t *testing.T) {
	if _, err := ParseState("applying"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseState("interviewing"); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}

package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"jobagent/internal/job"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAdvise(t *testing.T) {
	stub := &stubGenerator{response: "- Lead with your Go concurrency work.\n"}
	advisor := NewAdvisor(stub, zap.NewNop(), 0)

	listing := job.Listing{
		ID:          "job-1",
		Title:       "Go Developer",
		Company:     "Acme",
		Description: "Building backend services in Go and PostgreSQL.",
	}

	text, err := advisor.Advise(context.Background(), job.SkillSet{"go", "postgresql"}, listing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "- Lead with your Go concurrency work." {
		t.Fatalf("unexpected advice: %q", text)
	}

	if !strings.Contains(stub.lastPrompt, "Go Developer") {
		t.Fatalf("prompt missing job title: %q", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "go, postgresql") {
		t.Fatalf("prompt missing skills: %q", stub.lastPrompt)
	}
}

func TestAdviseRequiresInputs(t *testing.T) {
	advisor := NewAdvisor(&stubGenerator{response: "x"}, zap.NewNop(), 0)

	if _, err := advisor.Advise(context.Background(), job.SkillSet{}, job.Listing{ID: "job-1"}); err == nil {
		t.Fatalf("expected error for empty skill set")
	}
	if _, err := advisor.Advise(context.Background(), job.SkillSet{"go"}, job.Listing{}); err == nil {
		t.Fatalf("expected error for missing listing")
	}
}

func TestAdvisePropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	advisor := NewAdvisor(&stubGenerator{err: wantErr}, zap.NewNop(), 0)

	_, err := advisor.Advise(context.Background(), job.SkillSet{"go"}, job.Listing{ID: "job-1", Title: "x"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

package insight

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"jobagent/internal/job"
	"jobagent/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength  = 200
	maxDescriptionLength = 2000
)

// Advisor builds talking-point prompts and runs them through a generator.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAdvisor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Advisor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Advise generates advisory talking points for the listing against the
// candidate's skills.
func (a *Advisor) Advise(ctx context.Context, skills job.SkillSet, listing job.Listing) (string, error) {
	if listing.ID == "" {
		return "", fmt.Errorf("listing is required")
	}
	if skills.Len() == 0 {
		return "", fmt.Errorf("skill set is required")
	}

	prompt := buildPrompt(skills, listing)

	a.logger.Debug("insight generate content request",
		zap.String("job_id", listing.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("insight generate content response",
		zap.String("job_id", listing.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return strings.TrimSpace(raw), nil
}

func buildPrompt(skills job.SkillSet, listing job.Listing) string {
	description := strings.TrimSpace(listing.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		description = utils.TruncateForLog(description, maxDescriptionLength)
	}

	prompt := promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{TITLE}}", listing.Title)
	prompt = strings.ReplaceAll(prompt, "{{COMPANY}}", listing.Company)
	prompt = strings.ReplaceAll(prompt, "{{DESCRIPTION}}", description)
	prompt = strings.ReplaceAll(prompt, "{{SKILLS}}", strings.Join(skills, ", "))
	return prompt
}

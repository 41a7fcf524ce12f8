package report

import (
	"context"
	"log"
	"math"
	"strings"
)

// Synthesis statuses. The disqualification statuses are expected, non-error
// paths; "error" covers a failed or unparseable model call. All of them
// resolve to the deterministic fallback.
const (
	SynthesisOK              = "ok"
	SynthesisDisabled        = "disabled"
	SynthesisMissingKey      = "missing_key"
	SynthesisPayloadTooLarge = "payload_too_large"
	SynthesisError           = "error"
)

type SynthesisOutcome struct {
	Status    string
	UsedLLM   bool
	Model     string
	Summary   string
	Wins      []string
	Gaps      []string
	Sections  Sections
	CostCents int
	Payload   string
}

type Synthesizer struct {
	client     CompletionClient
	llmEnabled bool
	hasKey     bool
	model      string
	maxChars   int
}

func NewSynthesizer(client CompletionClient, llmEnabled bool, apiKey, model string, maxChars int) *Synthesizer {
	return &Synthesizer{
		client:     client,
		llmEnabled: llmEnabled,
		hasKey:     strings.TrimSpace(apiKey) != "",
		model:      strings.TrimSpace(model),
		maxChars:   maxChars,
	}
}

// Synthesize runs one report attempt: disqualification checks, at most one
// model call, fallback construction, per-section merge, and a final dedup
// pass. It never returns an error; every failure mode degrades to the
// fallback report.
func (s *Synthesizer) Synthesize(ctx context.Context, week WeekContext) SynthesisOutcome {
	payload, fits := shrinkModelPayload(week, s.maxChars)
	fallback := buildFallbackReport(week)

	outcome := SynthesisOutcome{
		Model:    s.model,
		Payload:  payload,
		Summary:  fallback.Summary,
		Wins:     fallback.Wins,
		Gaps:     fallback.Gaps,
		Sections: fallback.Sections,
	}

	switch {
	case !s.llmEnabled:
		outcome.Status = SynthesisDisabled
	case !s.hasKey:
		outcome.Status = SynthesisMissingKey
	case !fits:
		outcome.Status = SynthesisPayloadTooLarge
	}
	if outcome.Status != "" {
		outcome.CostCents = estimateCostCents(s.model, len(payload))
		outcome.Sections = dedupSections(outcome.Sections)
		return outcome
	}

	response, err := s.client.Complete(ctx, CompletionRequest{
		Model:  s.model,
		Prompt: buildReportPrompt(payload),
	})
	if err != nil {
		log.Printf("report synthesis call failed: %v", err)
		outcome.Status = SynthesisError
		outcome.CostCents = estimateCostCents(s.model, len(payload))
		outcome.Sections = dedupSections(outcome.Sections)
		return outcome
	}

	parsed, parseErr := parseReportResponse(response.Text)
	if parseErr != nil {
		log.Printf("report synthesis returned unparseable content (%d chars)", len(response.Text))
		outcome.Status = SynthesisError
		outcome.CostCents = estimateCostCents(s.model, len(payload))
		outcome.Sections = dedupSections(outcome.Sections)
		return outcome
	}

	outcome.Status = SynthesisOK
	outcome.UsedLLM = true
	if strings.TrimSpace(response.Model) != "" {
		outcome.Model = response.Model
	}
	outcome.CostCents = costCentsFromUsage(response.Usage)
	outcome.Sections = mergeSections(sectionsFromLLM(parsed), fallback.Sections)
	if strings.TrimSpace(parsed.Summary) != "" {
		outcome.Summary = strings.TrimSpace(parsed.Summary)
	}
	if len(parsed.Wins) > 0 {
		outcome.Wins = parsed.Wins
	}
	if len(parsed.Gaps) > 0 {
		outcome.Gaps = parsed.Gaps
	}
	outcome.Sections = dedupSections(outcome.Sections)
	return outcome
}

// mergeSections keeps the model's bucket verbatim when non-empty, otherwise
// fills with the fallback's rule-derived content. Both empty stays empty:
// sections are never invented.
func mergeSections(primary, fallback Sections) Sections {
	merged := Sections{}
	for _, key := range SectionKeys {
		from := primary.Buckets(key)
		fill := fallback.Buckets(key)
		target := merged.Buckets(key)
		for _, bucket := range []Bucket{BucketWorking, BucketSuggested, BucketAvoid} {
			source := *from.bucket(bucket)
			if len(source) == 0 {
				source = *fill.bucket(bucket)
			}
			*target.bucket(bucket) = source
		}
	}
	return merged
}

// dedupSections removes cross-source duplicates by (name, reason); the first
// occurrence in canonical section/bucket order wins.
func dedupSections(sections Sections) Sections {
	seen := map[string]bool{}
	deduped := Sections{}
	for _, key := range SectionKeys {
		source := sections.Buckets(key)
		target := deduped.Buckets(key)
		for _, bucket := range []Bucket{BucketWorking, BucketSuggested, BucketAvoid} {
			for _, item := range *source.bucket(bucket) {
				dedupKey := strings.ToLower(strings.TrimSpace(item.Name)) + "|" + strings.ToLower(strings.TrimSpace(item.Reason))
				if seen[dedupKey] {
					continue
				}
				seen[dedupKey] = true
				slot := target.bucket(bucket)
				*slot = append(*slot, item)
			}
		}
	}
	return deduped
}

// Rough per-model pricing for the skipped/failed paths, where no usage report
// exists. The charge floor of one cent is applied by the caller.
func estimateCostCents(model string, payloadChars int) int {
	base := 1
	lowered := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.Contains(lowered, "mini"), strings.Contains(lowered, "nano"):
		base = 1
	case lowered == "":
		base = 1
	default:
		base = 3
	}
	return base + payloadChars/40000
}

func costCentsFromUsage(usage AIUsage) int {
	if usage.TotalTokens <= 0 {
		return 0
	}
	return int(math.Ceil(float64(usage.TotalTokens) / 1000.0))
}

package report

import "encoding/json"

// One-pass trim caps applied when the serialized context exceeds the model
// budget. There is deliberately no iterative shrinking: if one pass does not
// fit, synthesis is disqualified instead.
const (
	trimDailyStats        = 5
	trimCandidates        = 12
	trimTrendSignals      = 4
	trimRiskFlags         = 4
	trimLabTrends         = 4
	trimLabHighlights     = 6
	trimJournalHighlights = 2
)

func serializeContext(ctx WeekContext) string {
	encoded, err := json.Marshal(ctx)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// shrinkModelPayload serializes the context within maxChars. When the full
// form fits it is returned untouched. Otherwise the fixed trim sequence runs
// once and the result is re-serialized; the second return reports whether the
// final form fits. List lengths only ever shrink.
func shrinkModelPayload(ctx WeekContext, maxChars int) (string, bool) {
	full := serializeContext(ctx)
	if len(full) <= maxChars {
		return full, true
	}

	trimmed := ctx
	if len(trimmed.DailyStats) > trimDailyStats {
		trimmed.DailyStats = trimmed.DailyStats[:trimDailyStats]
	}
	if len(trimmed.Candidates) > trimCandidates {
		trimmed.Candidates = trimmed.Candidates[:trimCandidates]
	}
	if len(trimmed.Signals.Trends) > trimTrendSignals {
		trimmed.Signals.Trends = trimmed.Signals.Trends[:trimTrendSignals]
	}
	if len(trimmed.Signals.RiskFlags) > trimRiskFlags {
		trimmed.Signals.RiskFlags = trimmed.Signals.RiskFlags[:trimRiskFlags]
	}
	if len(trimmed.Summaries.Labs.Trends) > trimLabTrends {
		trimmed.Summaries.Labs.Trends = trimmed.Summaries.Labs.Trends[:trimLabTrends]
	}
	if len(trimmed.Summaries.Labs.Highlights) > trimLabHighlights {
		trimmed.Summaries.Labs.Highlights = trimmed.Summaries.Labs.Highlights[:trimLabHighlights]
	}
	if len(trimmed.Summaries.Journal.Highlights) > trimJournalHighlights {
		trimmed.Summaries.Journal.Highlights = trimmed.Summaries.Journal.Highlights[:trimJournalHighlights]
	}
	// Chat highlights go entirely; the counts stay.
	trimmed.Summaries.Chat.Highlights = nil

	compact := serializeContext(trimmed)
	return compact, len(compact) <= maxChars
}

package usecase

// Outcome names the degradation path a stage took, so callers and tests can
// tell which fallback fired instead of inspecting final values.
type Outcome string

const (
	// Reranker outcomes.
	OutcomeRanked        Outcome = "ranked"
	OutcomeEmptyInput    Outcome = "empty_input"
	OutcomeIdentityOrder Outcome = "identity_order"

	// Content loader outcomes.
	OutcomeCacheHit       Outcome = "cache_hit"
	OutcomeConverted      Outcome = "converted"
	OutcomeNoDocument     Outcome = "no_document"
	OutcomeDownloadFailed Outcome = "download_failed"
	OutcomeConvertFailed  Outcome = "convert_failed"
)

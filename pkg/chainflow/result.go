package chainflow

// ChainResult is the final output of a completed chain run. It is what the
// cache serializes, so the field set is part of the cache layout.
type ChainResult struct {
	// Query is the original user query.
	Query string `json:"query"`

	// Steps holds every step result in execution order.
	Steps []StepResult `json:"steps"`

	// FinalAnswer is the text of the last executed step.
	FinalAnswer string `json:"final_answer"`

	// StepCount is the number of steps that actually executed. Skipped
	// optional steps are not counted.
	StepCount int `json:"step_count"`

	// DurationMillis is the wall-clock duration of the run. Zero for runs
	// answered from the cache.
	DurationMillis int64 `json:"duration_millis"`
}

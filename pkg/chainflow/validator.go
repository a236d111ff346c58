package chainflow

// ValidationContext carries what a validator needs to judge a step's output.
type ValidationContext struct {
	// ChainName is the chain being executed.
	ChainName string

	// StepName is the step whose output is being validated.
	StepName string

	// Result is the raw result text from the model.
	Result string

	// Query is the session's original user query.
	Query string

	// Attempt is the model-call attempt that produced Result (1 = first).
	Attempt int
}

// Validator checks a step's output against a domain rule.
//
// A failure (false) triggers a retry: the step's prompt is extended with the
// returned reason and the model is re-invoked, consuming one unit of the
// step's retry budget. The reason should therefore be phrased as actionable
// feedback for the model, not just a diagnostic.
type Validator interface {
	Validate(vc ValidationContext) (ok bool, reason string)
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(vc ValidationContext) (bool, string)

// Validate implements Validator.
func (f ValidatorFunc) Validate(vc ValidationContext) (bool, string) {
	return f(vc)
}

// MinLengthValidator rejects outputs shorter than n characters.
// Useful as a cheap guard against empty or truncated model responses.
func MinLengthValidator(n int) Validator {
	return ValidatorFunc(func(vc ValidationContext) (bool, string) {
		if len(vc.Result) < n {
			return false, "the response is too short, provide a fuller answer"
		}
		return true, ""
	})
}

// NonEmptyValidator rejects empty outputs.
func NonEmptyValidator() Validator {
	return MinLengthValidator(1)
}

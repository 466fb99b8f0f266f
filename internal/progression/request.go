package progression

// Request is the tagged union of transition requests. Each variant
// carries its own required fields; payload validation happens at the
// HTTP boundary before a request reaches the guard.
type Request interface {
	requestName() string
}

// ChangeStage moves the entity to a stage with an index greater than or
// equal to the current one. Equal index is a no-op success.
type ChangeStage struct {
	NewStage string
}

func (ChangeStage) requestName() string { return "change_stage" }

// CompleteSubstage marks a boolean sub-stage done.
type CompleteSubstage struct {
	SubstageID string
}

func (CompleteSubstage) requestName() string { return "complete_substage" }

// SetPercentage sets a percentage sub-stage's value. Override is the
// resolved forward-only override capability of the actor; when false the
// value may never decrease.
type SetPercentage struct {
	SubstageID string
	Value      int
	Override   bool
}

func (SetPercentage) requestName() string { return "set_percentage" }

// Name returns the request variant name, used for metrics labels.
func Name(req Request) string {
	if req == nil {
		return "unknown"
	}
	return req.requestName()
}

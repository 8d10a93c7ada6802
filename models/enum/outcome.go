package enum

type Outcome string

const (
	OutcomeRate              Outcome = "rate"
	OutcomeOutOfJurisdiction Outcome = "out_of_jurisdiction"
	OutcomeUnavailable       Outcome = "unavailable"
)

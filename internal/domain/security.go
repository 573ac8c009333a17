package domain

// RiskLevel enumerates guardrail outcomes.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// GuardrailAction describes how execution should react to a risk level.
type GuardrailAction string

const (
	ActionAllow           GuardrailAction = "allow"
	ActionSimpleConfirm   GuardrailAction = "simple_confirm"
	ActionConfirm         GuardrailAction = "confirm"
	ActionExplicitConfirm GuardrailAction = "explicit_confirm"
	ActionBlock           GuardrailAction = "block"
)

// RiskAssessment aggregates guardrail evaluation data for one command.
type RiskAssessment struct {
	Command      string
	Level        RiskLevel
	Action       GuardrailAction
	Reasons      []string
	MatchedRules []string
}

// Blocked reports whether the command must never run.
func (r RiskAssessment) Blocked() bool {
	return r.Action == ActionBlock
}

// NeedsConfirmation reports whether an extra, per-command confirmation is required.
func (r RiskAssessment) NeedsConfirmation() bool {
	switch r.Action {
	case ActionSimpleConfirm, ActionConfirm, ActionExplicitConfirm:
		return true
	default:
		return false
	}
}

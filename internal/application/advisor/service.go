package advisor

import (
	"context"
	"errors"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// Service orchestrates one suggest/execute round trip. It keeps no state
// between requests.
type Service struct {
	Provider        ports.SuggestionProvider
	SecurityService ports.SecurityService
	Runner          ports.ProcessRunner
	Prompter        ports.ConfirmationPrompter
	Logger          ports.Logger
}

// Suggest asks the model for commands and evaluates each against the
// guardrail. The returned Advice always carries a terminal state; Err is set
// (and also returned) when the request failed.
func (s *Service) Suggest(ctx context.Context, request string, os domain.OSContext) (domain.Advice, error) {
	if s.Provider == nil || s.SecurityService == nil || s.Logger == nil {
		return domain.Advice{}, errors.New("advisor.Service dependencies not satisfied")
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return domain.Advice{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("request must not be empty")
	}

	advice := domain.Advice{Request: request, OS: os, State: domain.StateIdle}
	s.transition(&advice, domain.StateRequesting)

	reply, err := s.Provider.Suggest(ctx, request, os)
	if err != nil {
		advice.Err = err
		s.transition(&advice, domain.StateFailed)
		return advice, err
	}

	advice.Reply = reply
	advice.Suggestions = reply.Normalize()
	advice.Risks = make([]domain.RiskAssessment, len(advice.Suggestions))
	for i, suggestion := range advice.Suggestions {
		if !suggestion.Executable() {
			advice.Risks[i] = domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow}
			continue
		}
		risk, err := s.SecurityService.Evaluate(suggestion.Command)
		if err != nil {
			advice.Err = err
			s.transition(&advice, domain.StateFailed)
			return advice, err
		}
		advice.Risks[i] = risk
	}
	s.transition(&advice, domain.StateParsed)
	return advice, nil
}

// Execute runs every executable suggestion in order and reports one result
// per command. Blocked commands are refused without spawning anything and
// risky ones need the prompter's approval. A failure never stops later
// commands. Callers obtain the user's overall go-ahead before calling.
func (s *Service) Execute(ctx context.Context, suggestions []domain.CommandSuggestion) []domain.ExecutionResult {
	var results []domain.ExecutionResult
	for _, suggestion := range suggestions {
		if !suggestion.Executable() {
			continue
		}
		command := strings.TrimSpace(suggestion.Command)
		assert.NotEmpty(ctx, command, "executable suggestion without command")

		if result, refused := s.gate(command); refused {
			results = append(results, result)
			continue
		}

		result := s.Runner.RunCommand(ctx, command, false)
		s.Logger.Info("suggestion executed", map[string]interface{}{
			"command":   command,
			"exit_code": result.ExitCode,
			"success":   result.Success,
		})
		results = append(results, result)
	}
	return results
}

// gate applies the guardrail to one command.
func (s *Service) gate(command string) (domain.ExecutionResult, bool) {
	risk, err := s.SecurityService.Evaluate(command)
	if err != nil {
		return domain.NewRefusal(command, domain.FailureBlocked, "guardrail error: "+err.Error()), true
	}
	if risk.Blocked() {
		s.Logger.Warn("command blocked by guardrail", map[string]interface{}{
			"command": command,
			"reasons": risk.Reasons,
		})
		return domain.NewRefusal(command, domain.FailureBlocked, "blocked by guardrail: "+strings.Join(risk.Reasons, "; ")), true
	}
	if !risk.NeedsConfirmation() {
		return domain.ExecutionResult{}, false
	}
	if s.Prompter == nil || !s.Prompter.Enabled() {
		return domain.NewRefusal(command, domain.FailureDeclined, "confirmation required but no interactive prompt is available"), true
	}
	approved, err := s.Prompter.ConfirmRisk(risk)
	if err != nil {
		return domain.NewRefusal(command, domain.FailureDeclined, "confirmation failed: "+err.Error()), true
	}
	if !approved {
		return domain.NewRefusal(command, domain.FailureDeclined, "declined by user"), true
	}
	return domain.ExecutionResult{}, false
}

func (s *Service) transition(advice *domain.Advice, next domain.RequestState) {
	fields := map[string]interface{}{
		"from": string(advice.State),
		"to":   string(next),
	}
	if next == domain.StateParsed {
		fields["reply_kind"] = string(advice.Reply.Kind)
		fields["suggestions"] = len(advice.Suggestions)
	}
	advice.State = next
	if next == domain.StateFailed {
		s.Logger.Error("advisor request failed", advice.Err, fields)
		return
	}
	s.Logger.Debug("advisor state", fields)
}

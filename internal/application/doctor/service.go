package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// RuleCounter is implemented by guardrails that can report their size.
type RuleCounter interface {
	RuleCount() int
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider   ports.ConfigProvider
	SecurityService  ports.SecurityService
	ContextCollector ports.ContextCollector
	Registry         ports.StrategyRegistry
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config", fmt.Sprintf("endpoint %s", cfg.ChatCompletionsURL())))
	checks = append(checks, apiCheck(cfg), modelCheck(cfg))

	if s.SecurityService != nil {
		if _, err := s.SecurityService.Evaluate("ls"); err != nil {
			checks = append(checks, fail("Guardrail", err.Error()))
		} else if counter, isCounter := s.SecurityService.(RuleCounter); isCounter && counter.RuleCount() == 0 {
			checks = append(checks, warn("Guardrail", "disabled, suggested commands are not screened"))
		} else if isCounter {
			checks = append(checks, ok("Guardrail", fmt.Sprintf("%d rules loaded", counter.RuleCount())))
		} else {
			checks = append(checks, ok("Guardrail", "rules loaded"))
		}
	} else {
		checks = append(checks, warn("Guardrail", "security service not initialized"))
	}

	if s.ContextCollector != nil {
		checks = append(checks, s.managerChecks()...)
		if s.ContextCollector.OS() != domain.OSWindows {
			elevation := cfg.ElevationWrapper()
			if s.ContextCollector.Available(elevation) {
				checks = append(checks, ok("Elevation", elevation+" found"))
			} else {
				checks = append(checks, warn("Elevation", elevation+" not found; apt updates will fail"))
			}
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) managerChecks() []domain.HealthCheck {
	var checks []domain.HealthCheck
	for _, manager := range domain.DefaultManagers(s.ContextCollector.OS()) {
		name := "Package manager " + string(manager)
		program := string(manager)
		if s.Registry != nil {
			if strategy, found := s.Registry.For(manager); found {
				program = strategy.ListInvocation().Program
			}
		}
		if s.ContextCollector.Available(program) {
			checks = append(checks, ok(name, program+" found"))
		} else {
			checks = append(checks, warn(name, program+" not found, will be skipped"))
		}
	}
	return checks
}

func apiCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.HasAPIKey() {
		return warn("API key", fmt.Sprintf("%s / %s missing; `ask` is unavailable", domain.EnvOpenRouterAPIKey, domain.EnvOpenAIAPIKey))
	}
	return ok("API key", fmt.Sprintf("from %s (%s)", cfg.LLM.APIKeySource, mask(cfg.LLM.APIKey)))
}

func modelCheck(cfg domain.Config) domain.HealthCheck {
	if cfg.LLM.Model == "" {
		return warn("Model", domain.EnvOpenAIModel+" not set; `ask` is unavailable")
	}
	return ok("Model", cfg.LLM.Model)
}

// mask keeps the last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 4) + secret[len(secret)-4:]
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}

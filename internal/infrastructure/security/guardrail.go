package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/termhelper/assets"
	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/pkg/filesystem"
	"github.com/doeshing/termhelper/internal/ports"
)

// Guardrail implements the SecurityService port.
type Guardrail struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re       *regexp.Regexp
	contains string
	rule     DangerPattern
}

// DangerPattern describes a guardrail rule. Exactly one of Pattern (a regex)
// or Contains (a case-insensitive substring) is set.
type DangerPattern struct {
	Pattern  string `yaml:"pattern,omitempty"`
	Contains string `yaml:"contains,omitempty"`
	Level    string `yaml:"level"`
	Message  string `yaml:"message"`
	Action   string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	// ReplaceDefaults drops the built-in rules instead of extending them.
	ReplaceDefaults bool `yaml:"replace_defaults"`
	Rules           struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail compiles the built-in rules plus those from settings.RulesFile.
// A disabled guardrail allows every command.
func NewGuardrail(settings domain.SecuritySettings) (*Guardrail, error) {
	if !settings.Enabled {
		return &Guardrail{}, nil
	}
	rules, err := loadRules(settings.RulesFile)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledPattern, 0, len(rules))
	for _, rule := range rules {
		cp := compiledPattern{rule: rule}
		switch {
		case rule.Pattern != "":
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("guardrail rule %q: %w", rule.Pattern, err)
			}
			cp.re = re
		case rule.Contains != "":
			cp.contains = strings.ToLower(rule.Contains)
		default:
			return nil, fmt.Errorf("guardrail rule %q has neither pattern nor contains", rule.Message)
		}
		compiled = append(compiled, cp)
	}
	return &Guardrail{patterns: compiled}, nil
}

// RuleCount reports how many rules are active.
func (g *Guardrail) RuleCount() int {
	if g == nil {
		return 0
	}
	return len(g.patterns)
}

// Evaluate implements ports.SecurityService. Every matching rule contributes
// a reason; the most severe one decides the level and action.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Command: command,
		Level:   domain.RiskSafe,
		Action:  domain.ActionAllow,
	}
	normalized := strings.Join(strings.Fields(command), " ")
	if normalized == "" {
		return assessment, nil
	}
	lower := strings.ToLower(normalized)

	for _, pattern := range g.patterns {
		if !pattern.matches(normalized, lower) {
			continue
		}
		ruleLevel := parseRiskLevel(pattern.rule.Level)
		ruleAction := parseAction(pattern.rule.Action, ruleLevel)
		if moreSevere(ruleLevel, assessment.Level) ||
			(ruleLevel == assessment.Level && actionRank(ruleAction) > actionRank(assessment.Action)) {
			assessment.Level = ruleLevel
			assessment.Action = ruleAction
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.id())
	}
	return assessment, nil
}

func (p compiledPattern) matches(normalized, lower string) bool {
	if p.re != nil {
		return p.re.MatchString(normalized)
	}
	return strings.Contains(lower, p.contains)
}

func (r DangerPattern) id() string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.Contains
}

func loadRules(path string) ([]DangerPattern, error) {
	var defaults RulesFile
	if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parse built-in guardrail rules: %w", err)
	}
	if path == "" {
		return defaults.Rules.DangerPatterns, nil
	}

	data, err := os.ReadFile(filesystem.ExpandHome(path))
	if err != nil {
		return nil, fmt.Errorf("read guardrail rules: %w", err)
	}
	var custom RulesFile
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return nil, fmt.Errorf("parse guardrail rules %s: %w", path, err)
	}
	if custom.ReplaceDefaults {
		return custom.Rules.DangerPatterns, nil
	}
	return append(defaults.Rules.DangerPatterns, custom.Rules.DangerPatterns...), nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "allow":
		return domain.ActionAllow
	case "simple_confirm":
		return domain.ActionSimpleConfirm
	case "confirm":
		return domain.ActionConfirm
	case "explicit_confirm":
		return domain.ActionExplicitConfirm
	case "block":
		return domain.ActionBlock
	default:
		if fallback == domain.RiskSafe {
			return domain.ActionAllow
		}
		return domain.ActionConfirm
	}
}

var levelOrder = map[domain.RiskLevel]int{
	domain.RiskSafe:     0,
	domain.RiskLow:      1,
	domain.RiskMedium:   2,
	domain.RiskHigh:     3,
	domain.RiskCritical: 4,
}

func moreSevere(next domain.RiskLevel, current domain.RiskLevel) bool {
	return levelOrder[next] > levelOrder[current]
}

func actionRank(a domain.GuardrailAction) int {
	switch a {
	case domain.ActionSimpleConfirm:
		return 1
	case domain.ActionConfirm:
		return 2
	case domain.ActionExplicitConfirm:
		return 3
	case domain.ActionBlock:
		return 4
	default:
		return 0
	}
}

var _ ports.SecurityService = (*Guardrail)(nil)

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/termhelper/internal/domain"
)

func TestPrompterConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"yes":   true,
	}
	for input, want := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(input), &out, true)
		got, err := p.Confirm("Update 3 package(s)?")
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Update 3 package(s)? [y/N]: ")
	}
}

func TestPrompterNonInteractiveRefuses(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\n"), &out, false)
	assert.False(t, p.Enabled())

	ok, err := p.Confirm("Execute?")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.ConfirmRisk(domain.RiskAssessment{Level: domain.RiskLow, Action: domain.ActionSimpleConfirm})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestPrompterConfirmRisk(t *testing.T) {
	tests := []struct {
		name   string
		action domain.GuardrailAction
		input  string
		want   bool
	}{
		{name: "simple accepts y", action: domain.ActionSimpleConfirm, input: "y\n", want: true},
		{name: "confirm declines default", action: domain.ActionConfirm, input: "\n", want: false},
		{name: "explicit needs yes", action: domain.ActionExplicitConfirm, input: "yes\n", want: true},
		{name: "explicit rejects y", action: domain.ActionExplicitConfirm, input: "y\n", want: false},
		{name: "block never asks", action: domain.ActionBlock, input: "yes\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, true)
			got, err := p.ConfirmRisk(domain.RiskAssessment{
				Command: "rm -rf ./build",
				Level:   domain.RiskHigh,
				Action:  tt.action,
				Reasons: []string{"Recursive deletion"},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "HIGH risk detected")
			assert.Contains(t, out.String(), " - Recursive deletion")
			assert.Contains(t, out.String(), "  rm -rf ./build")
		})
	}
}

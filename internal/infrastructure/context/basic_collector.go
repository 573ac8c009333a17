package contextcollector

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// HostInfo is the snapshot shown by diagnostics.
type HostInfo struct {
	OS             domain.OSContext
	GOOS           string
	Shell          string
	WorkingDir     string
	AvailableTools []string
}

// BasicCollector implements ContextCollector with PATH lookups.
type BasicCollector struct {
	goos         string
	lookPath     func(string) (string, error)
	toolsToCheck []string
}

// Option customizes a BasicCollector.
type Option func(*BasicCollector)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(c *BasicCollector) { c.goos = goos }
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *BasicCollector) { c.lookPath = fn }
}

func NewBasicCollector(opts ...Option) *BasicCollector {
	c := &BasicCollector{
		goos:         runtime.GOOS,
		lookPath:     exec.LookPath,
		toolsToCheck: []string{"winget", "apt", "apt-get", "pip", "python", "python3", "npm", "node", "sudo", "powershell"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OS implements ports.ContextCollector.
func (c *BasicCollector) OS() domain.OSContext {
	return domain.ParseOSContext(c.goos)
}

// Available implements ports.ContextCollector.
func (c *BasicCollector) Available(program string) bool {
	if program == "" {
		return false
	}
	_, err := c.lookPath(program)
	return err == nil
}

// Host gathers the diagnostic snapshot.
func (c *BasicCollector) Host() HostInfo {
	wd, _ := os.Getwd()
	return HostInfo{
		OS:             c.OS(),
		GOOS:           c.goos,
		Shell:          detectShell(c.goos),
		WorkingDir:     wd,
		AvailableTools: c.detectTools(),
	}
}

func (c *BasicCollector) detectTools() []string {
	var available []string
	for _, tool := range c.toolsToCheck {
		if c.Available(tool) {
			available = append(available, tool)
		}
	}
	sort.Strings(available)
	return available
}

func detectShell(goos string) string {
	if goos == "windows" {
		return "powershell"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return filepath.Base(domain.DefaultPosixShell)
}

var _ ports.ContextCollector = (*BasicCollector)(nil)

package packages

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/doeshing/termhelper/internal/domain"
)

var (
	wingetFooter = regexp.MustCompile(`(?i)^\d+\s+(upgrades?|packages?)\b`)
	wingetNotice = regexp.MustCompile(`(?i)^the following packages\b`)
)

// WingetStrategy parses the fixed-width table printed by `winget upgrade`.
type WingetStrategy struct{}

type wingetColumns struct {
	id, version, available, source int
}

func (WingetStrategy) Manager() domain.Manager { return domain.ManagerWinget }

func (WingetStrategy) ListInvocation() domain.Invocation {
	return domain.Invocation{Program: "winget", Args: []string{"upgrade", "--accept-source-agreements"}}
}

// AcceptsExit is always true: winget reports "no upgrades" with a non-zero
// code, and the table parser copes with whatever was printed.
func (WingetStrategy) AcceptsExit(int) bool { return true }

// Parse reads every table winget prints, including the explicit-targeting
// table that follows the main one. Column offsets come from each header and
// are measured in display cells; East Asian wide runes take two. Name is the package Id (what `winget upgrade --id`
// needs); the human-readable Name column becomes DisplayName.
func (WingetStrategy) Parse(raw string) ([]domain.OutdatedPackage, int) {
	var (
		pkgs    []domain.OutdatedPackage
		cols    wingetColumns
		inTable bool
	)
	skipped := 0
	for _, line := range splitLines(raw) {
		if c, ok := wingetHeader(line); ok {
			cols, inTable = c, true
			continue
		}
		trimmed := strings.TrimSpace(line)
		if wingetFooter.MatchString(trimmed) || wingetNotice.MatchString(trimmed) {
			inTable = false
			continue
		}
		if !inTable || strings.Trim(line, "-─ ") == "" {
			continue
		}
		if cellWidth(line) <= cols.available {
			skipped++
			continue
		}
		end := -1
		if cols.source > 0 {
			end = cols.source
		}
		name := strings.TrimSpace(sliceCells(line, 0, cols.id))
		id := strings.TrimSpace(sliceCells(line, cols.id, cols.version))
		current := strings.TrimSpace(sliceCells(line, cols.version, cols.available))
		latest := strings.TrimSpace(sliceCells(line, cols.available, end))
		if id == "" || strings.ContainsAny(id, " \t") || current == "" || latest == "" {
			skipped++
			continue
		}
		pkgs = append(pkgs, domain.OutdatedPackage{
			Manager:        domain.ManagerWinget,
			Name:           id,
			DisplayName:    name,
			CurrentVersion: current,
			LatestVersion:  latest,
		})
	}
	return pkgs, skipped
}

func wingetHeader(line string) (wingetColumns, bool) {
	if !strings.HasPrefix(strings.TrimSpace(line), "Name") {
		return wingetColumns{}, false
	}
	c := wingetColumns{
		id:        cellIndex(line, " Id "),
		version:   cellIndex(line, " Version "),
		available: cellIndex(line, " Available"),
		source:    cellIndex(line, " Source"),
	}
	if c.id < 0 || c.version < 0 || c.available < 0 {
		return wingetColumns{}, false
	}
	// Offsets point at the separating space; columns start one cell later.
	c.id++
	c.version++
	c.available++
	if c.source >= 0 {
		c.source++
	}
	if c.source <= c.available {
		c.source = -1
	}
	if !(c.id < c.version && c.version < c.available) {
		return wingetColumns{}, false
	}
	return c, true
}

// UpdateInvocations upgrades each package by exact Id.
func (WingetStrategy) UpdateInvocations(pkgs []domain.OutdatedPackage) []domain.Invocation {
	invs := make([]domain.Invocation, 0, len(pkgs))
	for _, pkg := range pkgs {
		invs = append(invs, domain.Invocation{
			Target:  pkg.Name,
			Program: "winget",
			Args: []string{
				"upgrade", "--id", pkg.Name, "--exact",
				"--accept-package-agreements", "--accept-source-agreements",
			},
		})
	}
	return invs
}

// cellIndex is strings.Index measured in display cells.
func cellIndex(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return cellWidth(s[:i])
}

func cellWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeCells(r)
	}
	return n
}

// sliceCells returns the runes of s that start in the cell range [from, to).
// A negative to means the end of the line.
func sliceCells(s string, from, to int) string {
	var b strings.Builder
	pos := 0
	for _, r := range s {
		if to >= 0 && pos >= to {
			break
		}
		if pos >= from {
			b.WriteRune(r)
		}
		pos += runeCells(r)
	}
	return b.String()
}

func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

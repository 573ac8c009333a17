package packages

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/doeshing/termhelper/internal/domain"
)

func TestAptParse(t *testing.T) {
	raw := strings.Join([]string{
		"Listing... Done",
		"curl/jammy-updates 7.81.0-1ubuntu1.16 amd64 [upgradable from: 7.81.0-1ubuntu1.15]",
		"libc6/jammy-security 2.35-0ubuntu3.8 amd64 [upgradable from: 2.35-0ubuntu3.7]",
		"this line is garbage",
		"vim/jammy 2:8.2.3995-1ubuntu2 amd64 [upgradable from: 2:8.2.3995-1ubuntu2]",
		"",
	}, "\n")

	pkgs, skipped := AptStrategy{}.Parse(raw)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerApt, Name: "curl", CurrentVersion: "7.81.0-1ubuntu1.15", LatestVersion: "7.81.0-1ubuntu1.16"},
		{Manager: domain.ManagerApt, Name: "libc6", CurrentVersion: "2.35-0ubuntu3.7", LatestVersion: "2.35-0ubuntu3.8"},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("apt packages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, skipped)
}

func TestAptParseEpochOrdering(t *testing.T) {
	raw := "pkg/stable 1:1.0 amd64 [upgradable from: 2.0]\n"
	pkgs, skipped := AptStrategy{}.Parse(raw)
	assert.Len(t, pkgs, 1, "epoch 1 outranks any version without one")
	assert.Zero(t, skipped)
}

func TestPipParse(t *testing.T) {
	raw := `Package    Version Latest Type
---------- ------- ------ -----
requests   2.28.0  2.31.0 wheel
urllib3    1.26.5  2.0.7  wheel
weird      not-a-version 1.0 wheel
broken
`
	pkgs, skipped := PipStrategy{}.Parse(raw)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerPip, Name: "requests", CurrentVersion: "2.28.0", LatestVersion: "2.31.0"},
		{Manager: domain.ManagerPip, Name: "urllib3", CurrentVersion: "1.26.5", LatestVersion: "2.0.7"},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("pip packages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, skipped)
}

func TestPipParseDropsPrereleaseDowngrade(t *testing.T) {
	raw := "Package Version Latest Type\nfoo 2.0.0 2.0.0rc1 wheel\n"
	pkgs, skipped := PipStrategy{}.Parse(raw)
	assert.Empty(t, pkgs)
	assert.Zero(t, skipped)
}

func TestNpmParseJSONKeepsOrder(t *testing.T) {
	raw := `{
  "typescript": {"current": "5.1.6", "wanted": "5.1.6", "latest": "5.4.5", "location": "node_modules/typescript"},
  "eslint": {"current": "8.40.0", "wanted": "8.57.0", "latest": "9.0.0"},
  "left-pad": {"wanted": "1.3.0", "latest": "1.3.0"},
  "lodash": [{"current": "4.17.20", "wanted": "4.17.21", "latest": "4.17.21"}]
}`
	pkgs, skipped := NpmStrategy{}.Parse(raw)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerNpm, Name: "typescript", CurrentVersion: "5.1.6", LatestVersion: "5.4.5"},
		{Manager: domain.ManagerNpm, Name: "eslint", CurrentVersion: "8.40.0", LatestVersion: "9.0.0"},
		{Manager: domain.ManagerNpm, Name: "lodash", CurrentVersion: "4.17.20", LatestVersion: "4.17.21"},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("npm packages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, skipped, "entry without current is skipped")
}

func TestNpmParseEmptyAndTable(t *testing.T) {
	pkgs, skipped := NpmStrategy{}.Parse("")
	assert.Empty(t, pkgs)
	assert.Zero(t, skipped)

	pkgs, skipped = NpmStrategy{}.Parse("{}")
	assert.Empty(t, pkgs)
	assert.Zero(t, skipped)

	table := `Package     Current  Wanted  Latest  Location
typescript  5.1.6    5.1.6   5.4.5   node_modules/typescript
left-pad    MISSING  1.3.0   1.3.0   -
`
	pkgs, skipped = NpmStrategy{}.Parse(table)
	assert.Equal(t, []domain.OutdatedPackage{
		{Manager: domain.ManagerNpm, Name: "typescript", CurrentVersion: "5.1.6", LatestVersion: "5.4.5"},
	}, pkgs)
	assert.Equal(t, 1, skipped)
}

func TestNpmAcceptsExitOne(t *testing.T) {
	s := NpmStrategy{}
	assert.True(t, s.AcceptsExit(0))
	assert.True(t, s.AcceptsExit(1))
	assert.False(t, s.AcceptsExit(2))
}

func TestWingetParse(t *testing.T) {
	raw := "   - \r   \\ \r" +
		"Name                      Id                     Version       Available     Source\r\n" +
		"-------------------------------------------------------------------------------------\r\n" +
		"Microsoft Edge            Microsoft.Edge         118.0.2088.46 118.0.2088.61 winget\r\n" +
		"Git                       Git.Git                2.41.0        2.45.1        winget\r\n" +
		"Short row\r\n" +
		"2 upgrades available.\r\n"

	pkgs, skipped := WingetStrategy{}.Parse(raw)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerWinget, Name: "Microsoft.Edge", DisplayName: "Microsoft Edge", CurrentVersion: "118.0.2088.46", LatestVersion: "118.0.2088.61"},
		{Manager: domain.ManagerWinget, Name: "Git.Git", DisplayName: "Git", CurrentVersion: "2.41.0", LatestVersion: "2.45.1"},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("winget packages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, skipped)
}

func TestWingetParseExplicitTargetingTable(t *testing.T) {
	raw := "Name            Id              Version Available Source\r\n" +
		"--------------------------------------------------------\r\n" +
		"Git             Git.Git         2.41.0  2.45.1    winget\r\n" +
		"1 upgrades available.\r\n" +
		"\r\n" +
		"The following packages have an upgrade available, but require explicit targeting for upgrade:\r\n" +
		"Name    Id              Version Available Source\r\n" +
		"------------------------------------------------\r\n" +
		"Discord Discord.Discord 1.0.9   1.0.9013  winget\r\n" +
		"1 package(s) have pins that prevent upgrade.\r\n"

	pkgs, skipped := WingetStrategy{}.Parse(raw)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerWinget, Name: "Git.Git", DisplayName: "Git", CurrentVersion: "2.41.0", LatestVersion: "2.45.1"},
		{Manager: domain.ManagerWinget, Name: "Discord.Discord", DisplayName: "Discord", CurrentVersion: "1.0.9", LatestVersion: "1.0.9013"},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("winget packages mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, skipped)
}

func TestWingetParseWideNames(t *testing.T) {
	raw := "Name        Id              Version Available Source\r\n" +
		"----------------------------------------------------\r\n" +
		"微信        Tencent.WeChat  3.9.0   3.9.8     winget\r\n" +
		"Git         Git.Git         2.41.0  2.45.1    winget\r\n"

	pkgs, skipped := WingetStrategy{}.Parse(raw)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerWinget, Name: "Tencent.WeChat", DisplayName: "微信", CurrentVersion: "3.9.0", LatestVersion: "3.9.8"},
		{Manager: domain.ManagerWinget, Name: "Git.Git", DisplayName: "Git", CurrentVersion: "2.41.0", LatestVersion: "2.45.1"},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("winget packages mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, skipped)
}

func TestWingetParseWithoutHeader(t *testing.T) {
	pkgs, skipped := WingetStrategy{}.Parse("No installed package found matching input criteria.\n")
	assert.Empty(t, pkgs)
	assert.Zero(t, skipped)
}

func TestUpdateInvocations(t *testing.T) {
	pkgs := func(m domain.Manager, names ...string) []domain.OutdatedPackage {
		var out []domain.OutdatedPackage
		for _, n := range names {
			out = append(out, domain.OutdatedPackage{Manager: m, Name: n})
		}
		return out
	}

	tests := []struct {
		name     string
		strategy interface {
			UpdateInvocations([]domain.OutdatedPackage) []domain.Invocation
		}
		pkgs []domain.OutdatedPackage
		want []domain.Invocation
	}{
		{
			name:     "apt bulk elevated",
			strategy: AptStrategy{},
			pkgs:     pkgs(domain.ManagerApt, "curl", "git"),
			want: []domain.Invocation{{
				Target:  "apt:curl,git",
				Program: "apt-get",
				Args:    []string{"install", "--only-upgrade", "-y", "curl", "git"},
				Elevate: true,
			}},
		},
		{
			name:     "npm bulk",
			strategy: NpmStrategy{},
			pkgs:     pkgs(domain.ManagerNpm, "typescript", "eslint"),
			want: []domain.Invocation{{
				Target:  "npm:typescript,eslint",
				Program: "npm",
				Args:    []string{"install", "typescript@latest", "eslint@latest"},
			}},
		},
		{
			name:     "pip per package",
			strategy: PipStrategy{Python: "python3.12"},
			pkgs:     pkgs(domain.ManagerPip, "requests", "urllib3"),
			want: []domain.Invocation{
				{Target: "requests", Program: "python3.12", Args: []string{"-m", "pip", "install", "--upgrade", "requests"}},
				{Target: "urllib3", Program: "python3.12", Args: []string{"-m", "pip", "install", "--upgrade", "urllib3"}},
			},
		},
		{
			name:     "winget per package",
			strategy: WingetStrategy{},
			pkgs:     pkgs(domain.ManagerWinget, "Git.Git"),
			want: []domain.Invocation{{
				Target:  "Git.Git",
				Program: "winget",
				Args:    []string{"upgrade", "--id", "Git.Git", "--exact", "--accept-package-agreements", "--accept-source-agreements"},
			}},
		},
		{
			name:     "apt nothing to do",
			strategy: AptStrategy{},
			pkgs:     nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.UpdateInvocations(tt.pkgs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("invocations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegistryCoversEveryManager(t *testing.T) {
	r := NewRegistry("python3")
	for _, m := range domain.AllManagers {
		s, ok := r.For(m)
		if assert.True(t, ok, "manager %s", m) {
			assert.Equal(t, m, s.Manager())
		}
	}
	pip, _ := r.For(domain.ManagerPip)
	assert.Equal(t, "python3", pip.ListInvocation().Program)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		result domain.ExecutionResult
		want   string
	}{
		{"already satisfied", domain.NewExitResult("x", 0, "Requirement already satisfied: requests", ""), "Already up to date"},
		{"apt newest", domain.NewExitResult("x", 0, "curl is already the newest version (7.81.0).", ""), "Already up to date"},
		{"installed", domain.NewExitResult("x", 0, "Successfully installed requests-2.31.0", ""), "Installed successfully"},
		{"user install", domain.NewExitResult("x", 0, "Defaulting to user installation because normal site-packages is not writeable", ""), "Updated (user install)"},
		{"plain success", domain.NewExitResult("x", 0, "changed 1 package", ""), "Success"},
		{"failure without output", domain.NewExitResult("x", 1, "", ""), "Failed"},
		{"failure with output", domain.NewExitResult("x", 1, "", "E: Unable to locate package foo"), "E: Unable to locate package foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.result))
		})
	}
}

func TestSummarizeTruncatesFailures(t *testing.T) {
	long := strings.Repeat("e", 1000)
	got := Summarize(domain.NewExitResult("x", 1, "", long))
	assert.Len(t, got, domain.SummaryMaxLength)
}

package packages

import (
	"fmt"

	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"
)

// compareDeb compares two Debian version strings, returning -1, 0 or 1.
func compareDeb(a, b string) (int, error) {
	v1, err := debversion.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("debian version %q: %w", a, err)
	}
	v2, err := debversion.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("debian version %q: %w", b, err)
	}
	return v1.Compare(v2), nil
}

// comparePep compares two PEP 440 version strings, returning -1, 0 or 1.
func comparePep(a, b string) (int, error) {
	v1, err := pep440.Parse(a)
	if err != nil {
		return 0, fmt.Errorf("pep440 version %q: %w", a, err)
	}
	v2, err := pep440.Parse(b)
	if err != nil {
		return 0, fmt.Errorf("pep440 version %q: %w", b, err)
	}
	return v1.Compare(v2), nil
}

// internal/page/gender.go
package page

import (
	"fmt"
	"strings"
)

// GenderOption is one of the form's gender radio labels.
type GenderOption string

const (
	Male   GenderOption = "Male"
	Female GenderOption = "Female"
	Other  GenderOption = "Other"
)

// ParseGender accepts a label case-insensitively. An empty string yields Male, the option the
// identity step selects by default.
func ParseGender(s string) (GenderOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "male":
		return Male, nil
	case "female":
		return Female, nil
	case "other":
		return Other, nil
	}
	return "", fmt.Errorf("unknown gender option %q", s)
}

// genderLocator matches the radio's label, which is the clickable target; the input itself is
// visually hidden.
func genderLocator(g GenderOption) Locator {
	return ByXPath(fmt.Sprintf("//label[text()='%s']", string(g)))
}

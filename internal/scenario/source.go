// internal/scenario/source.go
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/page"
)

// DataPrefix namespaces scenarios loaded from a cases file.
const DataPrefix = "data/"

// caseRow is one entry of a cases file.
type caseRow struct {
	Name               string `yaml:"name,omitempty"`
	Label              string `yaml:"label"`
	FirstName          string `yaml:"first_name"`
	LastName           string `yaml:"last_name"`
	Email              string `yaml:"email"`
	Mobile             string `yaml:"mobile"`
	Gender             string `yaml:"gender,omitempty"`
	Address            string `yaml:"address,omitempty"`
	File               string `yaml:"file,omitempty"`
	ExpectSuccess      bool   `yaml:"expect_success"`
	ExpectEmailInvalid bool   `yaml:"expect_email_invalid,omitempty"`
}

// LoadCases reads a YAML list of cases. Relative file paths resolve against the file's directory.
func LoadCases(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file: %w", err)
	}
	return ParseCases(bytes.NewReader(data), filepath.Dir(path))
}

// ParseCases decodes a YAML list of cases. Unknown keys, missing labels, unknown gender options and
// duplicate names are rejected with ErrInvalidCase.
func ParseCases(r io.Reader, baseDir string) ([]Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rows []caseRow
	if err := dec.Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCase, err)
	}

	seen := make(map[string]int, len(rows))
	out := make([]Scenario, 0, len(rows))
	for i, row := range rows {
		sc, err := row.scenario(baseDir)
		if err != nil {
			return nil, fmt.Errorf("%w: case %d: %v", ErrInvalidCase, i+1, err)
		}
		if prev, dup := seen[sc.Name]; dup {
			return nil, fmt.Errorf("%w: case %d: name %q already used by case %d", ErrInvalidCase, i+1, sc.Name, prev)
		}
		seen[sc.Name] = i + 1
		out = append(out, sc)
	}
	return out, nil
}

func (row caseRow) scenario(baseDir string) (Scenario, error) {
	label := strings.TrimSpace(row.Label)
	if label == "" {
		return Scenario{}, errors.New("label is required")
	}
	if _, err := page.ParseGender(row.Gender); err != nil {
		return Scenario{}, err
	}

	name := strings.TrimSpace(row.Name)
	if name == "" {
		name = slug(label)
	}
	if name == "" {
		return Scenario{}, fmt.Errorf("label %q yields an empty name", label)
	}

	file := row.File
	if file != "" && !filepath.IsAbs(file) && baseDir != "" {
		file = filepath.Join(baseDir, file)
	}

	return Scenario{
		Name:  DataPrefix + name,
		Label: label,
		Input: FormInput{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
			Mobile:    row.Mobile,
			Gender:    row.Gender,
			Address:   row.Address,
			FilePath:  file,
		},
		Expect: Expectation{Success: row.ExpectSuccess, EmailInvalid: row.ExpectEmailInvalid},
	}, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// WriteCases encodes scenarios in the cases-file format, so a run's suite can be exported and
// edited. The data prefix is stripped from names.
func WriteCases(w io.Writer, scenarios []Scenario) error {
	rows := make([]caseRow, 0, len(scenarios))
	for _, sc := range scenarios {
		rows = append(rows, caseRow{
			Name:               strings.TrimPrefix(sc.Name, DataPrefix),
			Label:              sc.Label,
			FirstName:          sc.Input.FirstName,
			LastName:           sc.Input.LastName,
			Email:              sc.Input.Email,
			Mobile:             sc.Input.Mobile,
			Gender:             sc.Input.Gender,
			Address:            sc.Input.Address,
			File:               sc.Input.FilePath,
			ExpectSuccess:      sc.Expect.Success,
			ExpectEmailInvalid: sc.Expect.EmailInvalid,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode cases: %w", err)
	}
	return enc.Close()
}

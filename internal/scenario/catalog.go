// internal/scenario/catalog.go
package scenario

// XSSPayload is typed into the address area to check the form stays functional with markup input.
const XSSPayload = "<script>console.log('XSS-Test')</script>"

// MandatoryFieldCases is the boundary table for required fields.
func MandatoryFieldCases() []Scenario {
	rows := []struct {
		name  string
		label string
		input FormInput
	}{
		{"missing_first_name", "Missing First Name", FormInput{FirstName: "", LastName: "Doe", Email: "test@test.com", Mobile: "1234567890"}},
		{"missing_last_name", "Missing Last Name", FormInput{FirstName: "John", LastName: "", Email: "test@test.com", Mobile: "1234567890"}},
		{"short_mobile_number", "Short Mobile Number", FormInput{FirstName: "John", LastName: "Doe", Email: "test@test.com", Mobile: "12345"}},
	}
	out := make([]Scenario, 0, len(rows))
	for _, r := range rows {
		out = append(out, Scenario{
			Name:   "mandatory_fields/" + r.name,
			Label:  r.label,
			Input:  r.input,
			Expect: Expectation{Success: false},
		})
	}
	return out
}

// Catalog returns the built-in suite. uploadPath is the picture attached by the upload scenario.
func Catalog(uploadPath string) []Scenario {
	scenarios := []Scenario{{
		Name:   "valid_submission",
		Label:  "Successful submission with all mandatory fields",
		Input:  FormInput{FirstName: "John", LastName: "Doe", Email: "valid@test.com", Mobile: "1234567890"},
		Expect: Expectation{Success: true},
	}}
	scenarios = append(scenarios, MandatoryFieldCases()...)
	return append(scenarios,
		Scenario{
			Name:   "invalid_email_format",
			Label:  "Client-side validation of an invalid email format",
			Input:  FormInput{FirstName: "Test", LastName: "User", Email: "invalid-email-format", Mobile: "1234567890"},
			Expect: Expectation{Success: false, EmailInvalid: true},
		},
		Scenario{
			Name:   "valid_file_upload",
			Label:  "File upload with a valid image",
			Input:  FormInput{FirstName: "Upload", LastName: "Test", Email: "upload@test.com", Mobile: "1234567890", FilePath: uploadPath},
			Expect: Expectation{Success: true},
		},
		Scenario{
			Name:   "xss_injection_attempt",
			Label:  "Script payload in the address field",
			Input:  FormInput{FirstName: "Security", LastName: "Test", Email: "safe@test.com", Mobile: "1234567890", Address: XSSPayload},
			Expect: Expectation{Success: true},
		},
	)
}

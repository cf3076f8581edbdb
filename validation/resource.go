package validation

// maxResourceNameLength is the platform limit for resource names.
const maxResourceNameLength = 253

// ValidateResourceName checks a pod or resource identifier against the
// platform naming rules: non-empty, no leading hyphen, letters, digits
// and hyphens only, at most 253 characters, and a first character that is
// a lowercase letter or digit. The leading-hyphen rule also prevents a
// name from being smuggled in as a flag-like token.
func ValidateResourceName(name string) error {
	if name == "" {
		return reject(CodeInvalidResourceName, "resource name cannot be empty")
	}
	if name[0] == '-' {
		return reject(CodeInvalidResourceName, "resource name cannot start with a hyphen")
	}
	if len(name) > maxResourceNameLength {
		return reject(CodeInvalidResourceName,
			"resource name cannot exceed %d characters", maxResourceNameLength)
	}
	for _, r := range name {
		if !isNameRune(r) {
			return reject(CodeInvalidResourceName,
				"invalid resource name %q: must contain only alphanumeric characters and hyphens", name)
		}
	}
	first := name[0]
	if !(first >= 'a' && first <= 'z' || first >= '0' && first <= '9') {
		return reject(CodeInvalidResourceName,
			"resource name must start with a lowercase letter or number")
	}
	return nil
}

func isNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '-'
}

package auth

import "strings"

const codeMarker = "code="

// ExtractCode normalizes what the user pasted into a bare authorization code.
// Either the code itself or the full redirect URL is accepted. When the input
// contains "code=", the first occurrence wins and the value runs up to the
// next '&'.
func ExtractCode(input string) (string, error) {
	code := strings.TrimSpace(input)
	if _, after, found := strings.Cut(code, codeMarker); found {
		code, _, _ = strings.Cut(after, "&")
	}
	if strings.TrimSpace(code) == "" {
		return "", &MissingInputError{}
	}
	return code, nil
}

package installer

import (
	"fmt"
	"strings"
)

// ValidateToken trims the registration token and rejects empty or
// whitespace-only input with ErrInputValidation.
func ValidateToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", fmt.Errorf("%w: registration token is empty", ErrInputValidation)
	}
	return token, nil
}

// maskToken hides the token in an argv before it is logged.
func maskToken(argv []string, token string) string {
	if token == "" {
		return strings.Join(argv, " ")
	}
	masked := make([]string, len(argv))
	for i, a := range argv {
		masked[i] = strings.ReplaceAll(a, token, "****")
	}
	return strings.Join(masked, " ")
}

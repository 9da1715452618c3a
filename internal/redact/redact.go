// Package redact provides utilities for redacting sensitive information
// from strings before they are logged or returned in error responses.
// The pipeline handles several credentials (Gemini key, image API key,
// object storage credentials) and hands out presigned URLs whose query
// signatures must never reach the logs.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedSignaturePlaceholder  = "[REDACTED_SIGNATURE]"
)

// Precompiled regex patterns
var (
	// API keys and tokens embedded in error text
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// AWS access key IDs
	awsKeyRegex = regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`)

	// Bearer tokens from HTTP error dumps
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`)

	// Presigned URL signature query parameters
	presignRegex = regexp.MustCompile(`(?i)(X-Amz-(Signature|Credential|Security-Token))=[^&\s]+`)

	// Passwords in connection-style strings
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)

	patterns = []*regexp.Regexp{
		apiKeyRegex, awsKeyRegex, bearerRegex, presignRegex, passwordRegex,
	}

	patternPlaceholders = map[*regexp.Regexp]string{
		apiKeyRegex:   RedactedKeyPlaceholder,
		awsKeyRegex:   RedactedKeyPlaceholder,
		bearerRegex:   RedactedCredentialPlaceholder,
		presignRegex:  RedactedSignaturePlaceholder,
		passwordRegex: RedactedCredentialPlaceholder,
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		placeholder := RedactionPlaceholder
		if ph, ok := patternPlaceholders[pattern]; ok {
			placeholder = ph
		}
		result = pattern.ReplaceAllString(result, placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

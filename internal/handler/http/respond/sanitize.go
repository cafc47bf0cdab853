package respond

import "regexp"

var (
	// apiKey=... or X-Api-Key: ... in upstream error text
	apiKeyParamPattern = regexp.MustCompile(`(?i)(api[_-]?key[=:]\s*)[^\s&":]+`)

	// bare 32-character hex keys as issued by NewsAPI
	hexKeyPattern = regexp.MustCompile(`\b[a-f0-9]{32}\b`)

	// user:password@ in a DSN
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns err's message with API keys and database passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = apiKeyParamPattern.ReplaceAllString(msg, "${1}****")
	msg = hexKeyPattern.ReplaceAllString(msg, "****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}

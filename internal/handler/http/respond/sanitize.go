package respond

import (
	"regexp"
)

var (
	// Anthropic keys first: they would otherwise half-match the OpenAI
	// pattern.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)

	// Nostr secret keys, bech32-encoded. The bridge service signs with
	// one; a relay error wrapping it must not reach a log sink verbatim.
	nostrSecretPattern = regexp.MustCompile(`nsec1[a-z0-9]+`)

	// Credentials embedded in URL userinfo (FreshRSS endpoints, relay
	// URLs with auth).
	urlUserinfoPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError masks API keys, signing keys, and URL-embedded
// credentials in an error message before it is logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = nostrSecretPattern.ReplaceAllString(msg, "nsec1****")
	msg = urlUserinfoPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}

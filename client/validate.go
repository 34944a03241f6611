package client

import "github.com/teamoptimus/voicebot/client/internal/types"

// ValidateLanguage checks a declared language code before it reaches the
// wire: a 2-3 letter lowercase primary subtag.
func ValidateLanguage(code string) error {
	return types.ValidateLanguage(code)
}

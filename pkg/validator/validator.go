package validator

import (
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// filenameReplacer drops characters that are unsafe in file names and turns spaces into underscores
var filenameReplacer = strings.NewReplacer(
	`\`, "", "/", "", "*", "", "?", "", ":", "",
	`"`, "", "<", "", ">", "", "|", "",
	" ", "_",
)

// SanitizeFilename removes \ / * ? : " < > | and replaces spaces with underscores.
// Applying it twice gives the same result as applying it once.
func SanitizeFilename(filename string) string {
	return filenameReplacer.Replace(filename)
}

// ValidateVideoID reports whether id looks like an 11-character video identifier
func ValidateVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// TruncateTitle shortens title to maxLen runes, appending "..." when cut.
// Uses rune-level truncation to properly handle UTF-8 multi-byte characters
func TruncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if maxLen <= 0 || len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + "..."
}

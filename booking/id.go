package booking

import (
	"regexp"
	"strings"
	"time"

	"github.com/rickchristie/travelkit"
)

// IDPattern is the booking id contract shared with stored and cached ids.
const IDPattern = `^(flight|bus|train|cab)-\w{4}-\d{8}$`

var idRegexp = regexp.MustCompile(IDPattern)

// ValidID reports whether id has the booking id shape.
func ValidID(id string) bool {
	return idRegexp.MatchString(id)
}

// NewID builds {mode}-{first four word characters of optionID}-{YYYYMMDD}.
// Option ids with fewer than four word characters cannot produce a valid id.
func NewID(mode travelkit.TransportType, optionID string, at time.Time) (string, error) {
	var prefix strings.Builder
	for _, r := range optionID {
		if prefix.Len() == 4 {
			break
		}
		if isWordChar(r) {
			prefix.WriteRune(r)
		}
	}
	if prefix.Len() < 4 {
		return "", travelkit.ValidationError(
			"option_id",
			"Option id %q needs at least 4 letters, digits or underscores", optionID,
		)
	}
	return string(mode) + "-" + prefix.String() + "-" + at.Format("20060102"), nil
}

// isWordChar matches the ASCII \w class of the id pattern.
func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

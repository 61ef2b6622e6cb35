package sequence

import (
	"strconv"
	"strings"

	"github.com/clinicore/opd-emr/internal/model"
)

// numberPlaceholder is substituted in a series' format template, e.g.
// "INV/{number}/2026".
const numberPlaceholder = "{number}"

// FormatIdentifier renders a reserved number into the human-facing document
// identifier. It is pure: the same (series, number) pair always yields the
// same string. Identifiers are persisted at creation time, so a later template
// change only affects new documents.
func FormatIdentifier(series *model.Series, number int64) string {
	n := strconv.FormatInt(number, 10)
	if series.Padding > 0 && len(n) < series.Padding {
		n = strings.Repeat("0", series.Padding-len(n)) + n
	}
	if series.Format != "" {
		return strings.ReplaceAll(series.Format, numberPlaceholder, n)
	}
	return series.Prefix + n + series.Suffix
}

// Package format provides human-readable formatting for listing output.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is the locale of the catalog's audience.
var DefaultLocale = language.Polish

// Formatter formats numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// New returns a formatter for the given BCP 47 tag. An unparsable tag falls
// back to DefaultLocale.
func New(tag string) *Formatter {
	lang, err := language.Parse(tag)
	if err != nil || tag == "" {
		lang = DefaultLocale
	}
	return &Formatter{printer: message.NewPrinter(lang)}
}

var defaultFormatter = &Formatter{printer: message.NewPrinter(DefaultLocale)}

// Number formats an integer with the locale's thousand separators.
func (f *Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Rating formats an average rating with one decimal.
// Example (pl): Rating(7.45) => "7,5"
func (f *Formatter) Rating(v float64) string {
	return f.printer.Sprintf("%.1f", v)
}

// Number formats n with the default locale.
func Number(n int) string { return defaultFormatter.Number(n) }

// Rating formats v with the default locale.
func Rating(v float64) string { return defaultFormatter.Rating(v) }

// Compact shortens large counts for narrow table columns, keeping the
// locale's decimal separator.
// Example (pl): Compact(15320) => "15,3K"
func (f *Formatter) Compact(n int) string {
	for _, s := range compactSteps {
		if n >= s.min || n <= -s.min {
			return f.printer.Sprintf("%.1f", float64(n)/float64(s.min)) + s.suffix
		}
	}
	return strconv.Itoa(n)
}

var compactSteps = []struct {
	min    int
	suffix string
}{
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// Size formats a byte count in binary units. Zero or less reads as
// "unlimited", matching how size limits are configured.
// Example (pl): Size(8 << 20) => "8,0 MiB"
func (f *Formatter) Size(n int64) string {
	if n <= 0 {
		return "unlimited"
	}
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}
	units := []string{"KiB", "MiB", "GiB", "TiB"}
	v := float64(n) / 1024
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return f.printer.Sprintf("%.1f", v) + " " + units[i]
}

// Compact shortens n with the default locale.
func Compact(n int) string { return defaultFormatter.Compact(n) }

// Size formats a byte count with the default locale.
func Size(n int64) string { return defaultFormatter.Size(n) }

// YearSpan describes a year selection for a status line: a contiguous run
// of more than two years becomes "max–min", anything else a comma list.
func YearSpan(desc []int) string {
	if len(desc) == 0 {
		return ""
	}
	run := len(desc) > 2
	for i := 1; run && i < len(desc); i++ {
		run = desc[i-1]-desc[i] == 1
	}
	if run {
		return fmt.Sprintf("%d–%d", desc[0], desc[len(desc)-1])
	}
	parts := make([]string, len(desc))
	for i, y := range desc {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// Package format turns raw opportunity fields into display text. Every
// function here degrades to a placeholder or to the raw input instead of
// failing, so one bad value never breaks a whole table.
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"

	"github.com/david/licita-radar/internal/models"
)

// Placeholder is shown for values that are absent.
const Placeholder = "—"

const (
	LabelCompraAgil   = "Compra Ágil"
	LabelLicitaciones = "Licitación"

	dateTimeLayout = "02/01/2006 15:04"
	clpGrouping    = "#.###,"
)

// Santiago is the zone every timestamp is displayed in.
var Santiago = mustLoadLocation("America/Santiago")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("format: load location %s: %v", name, err))
	}
	return loc
}

// CLP renders an amount in Chilean pesos without decimals, e.g. "$1.234.567".
func CLP(amount *float64) string {
	if amount == nil {
		return Placeholder
	}
	v := *amount
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return formatCLP(v)
}

func formatCLP(v float64) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}()

	rounded := math.Round(math.Abs(v))
	// humanize groups through int64; past that range show the raw value.
	if rounded >= math.MaxInt64 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	grouped := humanize.FormatFloat(clpGrouping, rounded)
	if grouped == "" {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v < 0 && rounded != 0 {
		return "-$" + grouped
	}
	return "$" + grouped
}

// ParseTime parses an ISO-8601 timestamp. Timestamps without an offset are
// read in loc.
func ParseTime(iso string, loc *time.Location) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = Santiago
	}
	if t, err := time.Parse(time.RFC3339Nano, iso); err == nil {
		return t, true
	}
	if !isoDatePrefix.MatchString(iso) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(iso, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isoDatePrefix keeps bare numbers such as epochs or years away from
// dateparse, which would otherwise accept them.
var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// DateTime renders iso as "dd/mm/yyyy hh:mm" in Santiago time.
func DateTime(iso string) string {
	return DateTimeIn(iso, Santiago)
}

// DateTimeIn is DateTime for an explicit zone. Empty input gives the
// placeholder; input that is not a date is returned unchanged.
func DateTimeIn(iso string, loc *time.Location) string {
	if strings.TrimSpace(iso) == "" {
		return Placeholder
	}
	if loc == nil {
		loc = Santiago
	}
	t, ok := ParseTime(iso, loc)
	if !ok {
		return iso
	}
	return t.In(loc).Format(dateTimeLayout)
}

// EpochMillis returns the parsed instant in milliseconds, 0 when iso is
// missing or not a date.
func EpochMillis(iso string, loc *time.Location) int64 {
	t, ok := ParseTime(iso, loc)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML stringifies v and escapes the five HTML-significant characters.
func EscapeHTML(v any) string {
	if v == nil {
		return ""
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return htmlEscaper.Replace(s)
}

// SourceLabel maps a source tag to its category label.
func SourceLabel(source string) string {
	if source == models.SourceCompraAgil {
		return LabelCompraAgil
	}
	return LabelLicitaciones
}

// markup matches a tag or a character reference. A lone "<" in text such as
// "a<b" is not markup and must survive.
var markup = regexp.MustCompile(`<[A-Za-z/!][^<>]*>|&(#[0-9]+|#[xX][0-9A-Fa-f]+|[A-Za-z][A-Za-z0-9]*);`)

// PlainText drops markup that leaks into upstream titles and buyer names
// and collapses whitespace.
func PlainText(s string) string {
	if !markup.MatchString(s) {
		return normalizeSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return normalizeSpace(s)
	}
	return normalizeSpace(doc.Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

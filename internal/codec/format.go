package codec

import (
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/sbenjam1n/xsdform/internal/schema"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
	timeLayout     = "15:04:05"
)

// Accepted input layouts per scalar class, tried in order.
var (
	dateInputs = []string{
		dateLayout,
		time.RFC3339,
		dateTimeLayout,
		"2006-01-02T15:04",
		"02.01.2006",
	}
	dateTimeInputs = []string{
		time.RFC3339,
		dateTimeLayout,
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		dateLayout,
	}
	timeInputs = []string{
		timeLayout,
		"15:04",
		time.RFC3339,
	}
)

var markup = regexp.MustCompile(`<[^<>]*>`)

// formatScalar normalizes dates and times to their canonical layouts.
// Values that do not parse are written as typed.
func formatScalar(class schema.ScalarClass, v string) string {
	switch class {
	case schema.ScalarDate:
		return reformat(v, dateInputs, dateLayout)
	case schema.ScalarDateTime:
		return reformat(v, dateTimeInputs, dateTimeLayout)
	case schema.ScalarTime:
		return reformat(v, timeInputs, timeLayout)
	}
	return v
}

func reformat(v string, inputs []string, layout string) string {
	s := strings.TrimSpace(v)
	for _, in := range inputs {
		if t, err := time.Parse(in, s); err == nil {
			return t.Format(layout)
		}
	}
	return v
}

func hasMarkup(v string) bool {
	return markup.MatchString(v)
}

// cdata writes v into el as CDATA. A "]]>" inside v is split across two
// sections so neither one closes early.
func cdata(el *etree.Element, v string) {
	parts := strings.Split(v, "]]>")
	for i, p := range parts {
		if i < len(parts)-1 {
			p += "]]"
		}
		if i > 0 {
			p = ">" + p
		}
		el.CreateCData(p)
	}
}

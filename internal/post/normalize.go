package post

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Abduluthman/quail/internal/model"
)

const (
	WordsPerMinute = 200

	// DisplayDateLayout renders as "March 05, 2024".
	DisplayDateLayout = "January 02, 2006"
	// displayDateInput also accepts a single-digit day.
	displayDateInput = "January 2, 2006"
	SourceDateLayout  = "2006-01-02"

	UnknownDate = "Unknown"
	// NullDate is shown for a date key that is present but empty.
	NullDate = "None"
)

var reservedKeys = map[string]struct{}{
	"title":          {},
	"tags":           {},
	"category":       {},
	"date":           {},
	"featured":       {},
	"reading_time":   {},
	"formatted_date": {},
}

// Normalize turns decoded front matter into Metadata, filling every derived field.
func Normalize(slug string, raw map[string]any, body string) model.Metadata {
	meta := model.Metadata{
		Title:    stringValue(raw["title"]),
		Tags:     stringList(raw["tags"]),
		Category: stringValue(raw["category"]),
		Featured: IsFeatured(raw["featured"]),
		Extra:    map[string]any{},
	}
	if meta.Title == "" {
		meta.Title = TitleFromSlug(slug)
	}

	if v, ok := raw["reading_time"]; ok && v != nil {
		meta.ReadingTime = fmt.Sprint(v)
	} else {
		meta.ReadingTime = ReadingTime(body)
	}

	meta.Date, meta.HasDate = raw["date"]
	if meta.HasDate {
		meta.FormattedDate = FormatDate(meta.Date)
	} else {
		meta.FormattedDate = UnknownDate
	}

	for k, v := range raw {
		if _, ok := reservedKeys[k]; !ok {
			meta.Extra[k] = v
		}
	}
	return meta
}

// ReadingTime estimates minutes at WordsPerMinute, rounding up. An empty body reads in 0 minutes.
func ReadingTime(body string) string {
	words := len(strings.Fields(body))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	return fmt.Sprintf("%d min read", minutes)
}

// FormatDate renders a front-matter date for display. Values that are not a
// time or a YYYY-MM-DD string come back stringified.
func FormatDate(v any) string {
	if v == nil {
		return NullDate
	}
	t, err := resolveDate(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return t.Format(DisplayDateLayout)
}

func resolveDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		return time.Parse(SourceDateLayout, d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

// ParseDisplayDate reverses FormatDate. It also accepts a raw fallback such as
// "March 5, 2024". Anything else yields the zero time so it sorts last.
func ParseDisplayDate(s string) time.Time {
	t, err := time.Parse(displayDateInput, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsFeatured compares the stringified value to "true" ignoring case, so "True",
// "TRUE" and a YAML boolean true all count.
func IsFeatured(v any) bool {
	if v == nil {
		return false
	}
	return strings.ToLower(fmt.Sprint(v)) == "true"
}

func TitleFromSlug(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func stringList(v any) []string {
	switch l := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if item == nil {
				continue
			}
			out = append(out, stringValue(item))
		}
		return out
	case []string:
		return append([]string{}, l...)
	default:
		return []string{stringValue(l)}
	}
}

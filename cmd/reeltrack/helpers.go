package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reeltrack/internal/production"
)

var titleCaser = cases.Title(language.English)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// displayStatus renders an enum value for table output: underscores become
// spaces and words are title-cased.
func displayStatus[T ~string](value T) string {
	return titleCaser.String(strings.ReplaceAll(string(value), "_", " "))
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid identifier %q", arg)
	}
	return id, nil
}

func parseContentTypeArg(arg string) (production.ContentType, error) {
	contentType, ok := production.ParseContentType(arg)
	if !ok {
		known := make([]string, 0, len(production.AllContentTypes()))
		for _, ct := range production.AllContentTypes() {
			known = append(known, string(ct))
		}
		return "", fmt.Errorf("unknown content type %q (known: %s)", arg, strings.Join(known, ", "))
	}
	return contentType, nil
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 1, 64) + "h"
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func formatOptionalFloat(value *float64, digits int) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', digits, 64)
}

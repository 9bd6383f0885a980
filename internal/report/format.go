package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"

	ContentTypePDF   = "application/pdf"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	fileTimestampLayout = "20060102T150405Z"
)

// ParseFormat accepts "pdf" and "excel" (also "xlsx"), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("Unsupported format: %s", s) //nolint:staticcheck // surfaced verbatim to API clients
	}
}

func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "pdf"
}

func (f Format) ContentType() string {
	if f == FormatExcel {
		return ContentTypeExcel
	}
	return ContentTypePDF
}

// File is a rendered report held in memory
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileName builds "<name>_<UTC timestamp>.<ext>" with unsafe characters replaced.
func FileName(reportName string, f Format, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(reportName))
	if safe == "" {
		safe = "report"
	}

	return fmt.Sprintf("%s_%s.%s", safe, now.UTC().Format(fileTimestampLayout), f.Extension())
}

// Package csvexport renders tabular exports as RFC 4180 CSV.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ContentType is the response media type for exports.
const ContentType = "text/csv; charset=utf-8"

const filenameLayout = "20060102T150405Z"

// Write encodes header and rows to w. Fields containing a comma, quote, CR or
// LF are quoted and embedded quotes doubled.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Encode returns header and rows as CSV bytes.
func Encode(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, header, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns "<prefix>_<UTC timestamp>.csv".
func Filename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, t.UTC().Format(filenameLayout))
}

// ContentDisposition returns an attachment header value for an export.
func ContentDisposition(prefix string, t time.Time) string {
	return fmt.Sprintf("attachment; filename=%q", Filename(prefix, t))
}

// Package bulkimport parses the pipe-delimited upload format used to load
// document records in bulk. Lines whose first non-whitespace character is '#'
// are comments; every other non-blank line carries exactly six fields:
// title|author|doc_code|compiled_url|source_url|abstract.
package bulkimport

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// FieldCount is the exact number of pipe-delimited fields per data line.
const FieldCount = 6

// Record is one parsed data line, in field order.
type Record struct {
	Title       string
	Author      string
	DocCode     string
	CompiledURL string
	SourceURL   string
	Abstract    string
}

// AcceptableContentType reports whether the uploaded part's content type is
// plain text. Anything else is rejected outright before reading the stream.
func AcceptableContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/")
}

// Parse reads the upload line by line and returns the candidate records.
// A single malformed line fails the whole parse; format errors across all
// lines are accumulated so the caller can report every offending line at
// once. No partial result is returned on error.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		result  *multierror.Error
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != FieldCount {
			result = multierror.Append(result, fmt.Errorf(
				"line %d: expected %d fields, got %d", lineNo, FieldCount, len(fields)))
			continue
		}

		records = append(records, Record{
			Title:       strings.TrimSpace(fields[0]),
			Author:      strings.TrimSpace(fields[1]),
			DocCode:     strings.TrimSpace(fields[2]),
			CompiledURL: strings.TrimSpace(fields[3]),
			SourceURL:   strings.TrimSpace(fields[4]),
			Abstract:    strings.TrimSpace(fields[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return records, nil
}

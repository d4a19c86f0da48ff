// Package metadata reads the YAML header block at the top of workspace
// markdown files and decides whether a file is still an unpersonalized
// template.
//
// A header block starts with a "---" line at the very top of the file and
// ends at the next "---" line. Everything after it is the body.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoHeader indicates the file does not start with a header block.
	// It is an expected outcome, not a failure.
	ErrNoHeader = errors.New("metadata: no header block")
	// ErrMalformed indicates the header block could not be parsed.
	ErrMalformed = errors.New("metadata: malformed header block")
)

// Internal fields attached to every successfully extracted header.
const (
	FieldFilePath = "_file_path"
	FieldFileName = "_file_name"
	FieldError    = "error"
)

// TemplateMarker is the header key that flags a file as a template.
const TemplateMarker = "smart_default"

// PlaceholderToken marks template bodies that carry no header marker.
const PlaceholderToken = "{{SMART_DEFAULT}}"

// Outcome tags the result of an extraction.
type Outcome int

const (
	// Found means a header block was parsed.
	Found Outcome = iota
	// NoHeader means the file has no header block.
	NoHeader
	// Malformed means the file could not be read or its header parsed.
	Malformed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NoHeader:
		return "no_header"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Header is a parsed header block with date values in canonical string form.
type Header map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (h Header) String(key string) string {
	if s, ok := h[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Bool returns the boolean value of key. Strings "true" and "yes" count.
func (h Header) Bool(key string) bool {
	switch v := h[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "yes"
	}
	return false
}

// Strings returns a list value of key, skipping non-string entries.
// A single string is returned as a one-element list.
func (h Header) Strings(key string) []string {
	switch v := h[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) != "" {
			return []string{strings.TrimSpace(v)}
		}
	}
	return nil
}

// Map returns the nested mapping at key, or nil.
func (h Header) Map(key string) Header {
	if m, ok := h[key].(map[string]any); ok {
		return Header(m)
	}
	return nil
}

// Record is the result of extracting one file's header.
type Record struct {
	Outcome Outcome
	Path    string
	Header  Header
	Body    []byte
	Err     error
}

// Fields returns the record in its externally visible shape: the header
// plus internal path fields when found, an error record when malformed,
// and nil when the file has no header.
func (r Record) Fields() map[string]any {
	switch r.Outcome {
	case Found:
		return r.Header
	case Malformed:
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		return map[string]any{FieldError: msg, FieldFilePath: r.Path}
	default:
		return nil
	}
}

// Extract reads path and parses its header block.
func Extract(path string) Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{Outcome: Malformed, Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return ExtractContent(path, data)
}

// ExtractContent parses data as if it were read from path.
func ExtractContent(path string, data []byte) Record {
	header, body, err := Parse(data)
	switch {
	case errors.Is(err, ErrNoHeader):
		return Record{Outcome: NoHeader, Path: path, Body: body}
	case err != nil:
		return Record{Outcome: Malformed, Path: path, Err: err}
	}

	header[FieldFilePath] = path
	header[FieldFileName] = filepath.Base(path)
	return Record{Outcome: Found, Path: path, Header: header, Body: body}
}

// Parse splits content into its header and body. It returns ErrNoHeader
// (with the whole content as body) when there is no header block, and an
// error wrapping ErrMalformed when the block is unterminated or invalid.
func Parse(content []byte) (Header, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, normalized, ErrNoHeader
	}

	rest := normalized[len("---\n"):]
	block, body, ok := splitHeader(rest)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing closing delimiter", ErrMalformed)
	}

	header := Header{}
	if len(bytes.TrimSpace(block)) > 0 {
		var raw map[string]any
		if err := yaml.Unmarshal(block, &raw); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for k, v := range raw {
			header[k] = canonicalize(v)
		}
	}
	return header, body, nil
}

// splitHeader finds the first line consisting only of "---".
func splitHeader(rest []byte) (block, body []byte, ok bool) {
	offset := 0
	for offset <= len(rest) {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest) + 1
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if string(bytes.TrimRight(line, " \t")) == "---" {
			block = rest[:offset]
			if next <= len(rest) {
				body = rest[next:]
			}
			return block, body, true
		}
		if end < 0 {
			break
		}
		offset = next
	}
	return nil, nil, false
}

// canonicalize converts date values to strings, recursing into
// collections. yaml.v3 keeps timestamps as strings when decoding into
// interface values, but time.Time can still appear via explicit tags.
func canonicalize(v any) any {
	switch val := v.(type) {
	case time.Time:
		return formatDate(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = canonicalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = canonicalize(item)
		}
		return out
	default:
		return v
	}
}

func formatDate(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// IsTemplate reports whether the file at path is an unpersonalized
// template. An unreadable file is not a template.
func IsTemplate(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return IsTemplateContent(data)
}

// IsTemplateContent applies the template rules to content: an explicit
// header marker decides when present; otherwise the placeholder token in
// the body does.
func IsTemplateContent(content []byte) bool {
	header, body, err := Parse(content)
	if err == nil {
		if _, ok := header[TemplateMarker]; ok {
			return header.Bool(TemplateMarker)
		}
		return bytes.Contains(body, []byte(PlaceholderToken))
	}
	return bytes.Contains(content, []byte(PlaceholderToken))
}

// Package extract recovers a structured JSON payload from free-form
// model output. Models routinely wrap the payload in prose, fence it as
// a code block, or cut it off mid-value when they hit an output-length
// limit; extraction works through a fixed chain of fallbacks and only
// gives up when every one of them fails.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hjson/hjson-go/v4"
)

// MalformedResponseError means every extraction and repair attempt
// failed. Raw carries the original model output for diagnostics.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("could not extract a JSON payload from model output (%d bytes)", len(e.Raw))
}

// Payload extracts the JSON payload from raw model output and returns
// it decoded (map[string]any for objects, []any for arrays).
//
// Attempts, in order: a line-anchored ```json fenced block, then
// string-aware bracket matching over the whole text; the candidate is
// parsed strictly, then leniently, then once more after truncation
// repair. Failure of the whole chain is a MalformedResponseError.
func Payload(text string) (any, error) {
	cleaned := stripControl(text)

	candidate, ok := fencedBlock(cleaned)
	if !ok {
		candidate, ok = matchBrackets(cleaned)
	}
	if !ok {
		// Truncated output never closes its brackets, so bracket
		// matching cannot succeed; take everything from the first
		// opener and let repair close it.
		start := strings.IndexAny(cleaned, "{[")
		if start < 0 {
			return nil, &MalformedResponseError{Raw: text}
		}
		candidate = strings.TrimSpace(cleaned[start:])
	}

	if v, err := parse(candidate); err == nil {
		return v, nil
	}

	if v, err := parse(repairTruncation(candidate)); err == nil {
		return v, nil
	}

	return nil, &MalformedResponseError{Raw: text}
}

// stripControl removes non-printable control characters. Tabs and
// newlines stay, and so does every syntactic character: backslash
// escapes and markup delimiters like $ pass through verbatim.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// fencedBlock returns the content of the first ```json block. The
// closing fence must sit at the start of a line (only whitespace since
// the last newline); a ``` embedded inside a JSON string value does not
// terminate the block.
func fencedBlock(s string) (string, bool) {
	lower := strings.ToLower(s)
	open := strings.Index(lower, "```json")
	if open < 0 {
		return "", false
	}
	nl := strings.IndexByte(s[open:], '\n')
	if nl < 0 {
		return "", false
	}
	start := open + nl + 1

	rest := s[start:]
	lineStart := 0
	for lineStart <= len(rest) {
		lineEnd := strings.IndexByte(rest[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(rest)
		} else {
			lineEnd += lineStart
		}
		line := rest[lineStart:lineEnd]
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			return strings.TrimSpace(rest[:lineStart]), true
		}
		if lineEnd == len(rest) {
			break
		}
		lineStart = lineEnd + 1
	}
	return "", false
}

// matchBrackets finds the first { or [ and walks forward to its
// matching closer, tracking string literals and escape sequences so
// brackets inside string values are not counted.
func matchBrackets(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// parse decodes candidate, strictly first and then through the lenient
// hjson reader, which tolerates trailing commas, unquoted keys and
// single-quoted strings. The lenient result is round-tripped through
// encoding/json so both paths hand back the same plain value types.
func parse(candidate string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err == nil {
		return v, nil
	}

	var relaxed any
	if err := hjson.Unmarshal([]byte(candidate), &relaxed); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(relaxed)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(normalized, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// repairTruncation patches output cut off by a length limit: close a
// string left open mid-literal, then append the closers for every
// bracket still open, innermost first.
func repairTruncation(candidate string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(candidate)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

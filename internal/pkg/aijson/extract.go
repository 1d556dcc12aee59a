// Package aijson recovers a single JSON object or array from free-form model output.
//
// The repair ladder targets the two failure modes seen in practice, stray formatting and
// truncation at the token limit. It is not a relaxed JSON parser: unquoted keys, single-quoted
// strings and similar mistakes still fail.
package aijson

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("`+")
	labelRe         = regexp.MustCompile(`(?i)^\s*json\s*[:\-–—]?\s*`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	controlRe       = regexp.MustCompile(`[\x{0000}-\x{001F}\x{007F}-\x{009F}]`)

	smartQuotes = strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
)

// Extract returns the decoded value (map[string]any or []any) found in text.
func Extract(text string) (any, error) {
	raw, err := ExtractRaw(text)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &ExtractError{Kind: KindUnparsableJSON, Original: text, Candidate: string(raw), Err: err}
	}
	return v, nil
}

// ExtractInto decodes the recovered JSON into out. Shape errors from the decode are returned
// unchanged so callers can tell them apart from extraction failures.
func ExtractInto(text string, out any) error {
	raw, err := ExtractRaw(text)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// ExtractRaw returns the compacted JSON text that parsed successfully.
func ExtractRaw(text string) (json.RawMessage, error) {
	cleaned := Clean(text)

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return nil, &ExtractError{Kind: KindNoJSONStart, Original: text}
	}

	candidate := balance(cleaned[start:])

	raw, firstErr := parse(candidate)
	if firstErr == nil {
		return raw, nil
	}

	repaired := Repair(candidate)
	raw, err := parse(repaired)
	if err == nil {
		return raw, nil
	}
	return nil, &ExtractError{
		Kind:      KindUnparsableJSON,
		Original:  text,
		Candidate: candidate,
		Repaired:  repaired,
		Err:       err,
	}
}

// Clean strips code fences, smart quotes and a leading "json" label.
func Clean(text string) string {
	cleaned := fenceRe.ReplaceAllString(text, "")
	cleaned = smartQuotes.Replace(cleaned)
	cleaned = labelRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// Repair drops trailing commas before a closer and control characters.
func Repair(candidate string) string {
	repaired := trailingCommaRe.ReplaceAllString(candidate, "$1")
	return controlRe.ReplaceAllString(repaired, "")
}

func parse(s string) (json.RawMessage, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}

func closerFor(open byte) byte {
	if open == '[' {
		return ']'
	}
	return '}'
}

// balance scans s, which starts with '{' or '[', and returns the extraction candidate.
//
// Termination follows the depth of the opening pair only. Every opener seen outside a string
// is also tracked on a stack so a truncated candidate can be closed in the right order.
func balance(s string) string {
	open := s[0]
	closeCh := closerFor(open)

	depth := 0
	inString := false
	var quote byte
	escaped := false
	stack := make([]byte, 0, 8)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' || ch == '\'' {
			if !inString {
				inString = true
				quote = ch
			} else if ch == quote {
				inString = false
			}
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if n := len(stack); n > 0 && closerFor(stack[n-1]) == ch {
				stack = stack[:n-1]
			}
		}

		if ch == open {
			depth++
		} else if ch == closeCh {
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	if depth <= 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(stack) + 1)
	if escaped {
		b.WriteString(s[:len(s)-1])
	} else {
		b.WriteString(s)
	}
	if inString {
		b.WriteByte(quote)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(closerFor(stack[i]))
	}
	return b.String()
}

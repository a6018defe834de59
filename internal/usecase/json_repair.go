package usecase

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFencePattern     = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*(?:```|$)")
	partialLiteralSuffix = regexp.MustCompile(`[A-Za-z]+$`)
)

// jsonScan is the bracket state of a (possibly truncated) JSON text
type jsonScan struct {
	stack       []byte // open '{' and '[' in order
	inString    bool
	stringStart int // index of the opening quote of the unterminated string
	rootEnd     int // index just past the close of the first top-level value, or -1
}

func scanJSON(s string) jsonScan {
	st := jsonScan{stringStart: -1, rootEnd: -1}
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if st.inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				st.inString = false
				st.stringStart = -1
			}
			continue
		}
		switch ch {
		case '"':
			st.inString = true
			st.stringStart = i
		case '{', '[':
			st.stack = append(st.stack, ch)
		case '}', ']':
			if len(st.stack) > 0 {
				st.stack = st.stack[:len(st.stack)-1]
				if len(st.stack) == 0 && st.rootEnd < 0 {
					st.rootEnd = i + 1
				}
			}
		}
	}
	return st
}

// sanitizeOracleBody takes the first fenced block holding an object, drops the
// prose around it and returns the first object that parses. A truncated object
// is returned as is for repairTruncatedJSON.
func sanitizeOracleBody(body string) string {
	s := strings.TrimSpace(body)
	if m := codeFencePattern.FindStringSubmatch(s); m != nil && strings.Contains(m[1], "{") {
		s = strings.TrimSpace(m[1])
	}
	return firstJSONObject(s)
}

// firstJSONObject tries each '{' in turn. It returns the first complete object
// that is valid JSON, or the first unterminated one that repairs cleanly.
// Failing both it falls back to the text from the first '{' to its matching close.
func firstJSONObject(s string) string {
	fallback := ""
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		candidate := s[i:]
		end := scanJSON(candidate).rootEnd
		if end < 0 {
			if json.Valid([]byte(repairTruncatedJSON(candidate))) {
				return candidate
			}
		} else if json.Valid([]byte(candidate[:end])) {
			return candidate[:end]
		}
		if fallback == "" {
			fallback = candidate
			if end > 0 {
				fallback = candidate[:end]
			}
		}
	}
	if fallback == "" {
		return s
	}
	return fallback
}

// repairTruncatedJSON is a best-effort fix for a response cut off mid-object:
// drop an unterminated string, a dangling key or partial literal and trailing commas,
// then append the closers needed to balance the open brackets.
func repairTruncatedJSON(s string) string {
	s = strings.TrimSpace(s)

	if st := scanJSON(s); st.inString {
		s = s[:st.stringStart]
	}

	for {
		trimmed := strings.TrimRight(s, " \t\r\n")
		switch {
		case strings.HasSuffix(trimmed, ","),
			strings.HasSuffix(trimmed, "."),
			strings.HasSuffix(trimmed, "-"),
			strings.HasSuffix(trimmed, "+"):
			trimmed = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, ":"):
			trimmed = dropTrailingString(trimmed[:len(trimmed)-1])
		case partialLiteralSuffix.MatchString(trimmed) && !endsWithCompleteLiteral(trimmed):
			trimmed = partialLiteralSuffix.ReplaceAllString(trimmed, "")
		case strings.HasSuffix(trimmed, `"`) && isDanglingKey(trimmed):
			trimmed = dropTrailingString(trimmed)
		}
		if trimmed == s {
			break
		}
		s = trimmed
	}

	st := scanJSON(s)
	var b strings.Builder
	b.WriteString(s)
	for i := len(st.stack) - 1; i >= 0; i-- {
		if st.stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

func endsWithCompleteLiteral(s string) bool {
	return strings.HasSuffix(s, "true") || strings.HasSuffix(s, "false") || strings.HasSuffix(s, "null")
}

// dropTrailingString removes a complete string literal at the end of s, if there is one
func dropTrailingString(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if !strings.HasSuffix(s, `"`) {
		return s
	}
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] == '"' && !isEscapedQuote(s, i) {
			return s[:i]
		}
	}
	return s
}

func isEscapedQuote(s string, i int) bool {
	backslashes := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		backslashes++
	}
	return backslashes%2 == 1
}

// isDanglingKey reports whether s ends with a string sitting in key position of an open object
func isDanglingKey(s string) bool {
	st := scanJSON(s)
	if len(st.stack) == 0 || st.stack[len(st.stack)-1] != '{' {
		return false
	}
	before := strings.TrimRight(dropTrailingString(s), " \t\r\n")
	return strings.HasSuffix(before, "{") || strings.HasSuffix(before, ",")
}

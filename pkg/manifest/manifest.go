// Package manifest encodes and decodes the ordered source list handed to the
// concatenation tool: one path per line, in ffconcat "file '<path>'" syntax.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

const header = "ffconcat version 1.0"

// Encode renders paths as a manifest. Paths are written verbatim; callers
// resolve them to absolute form first.
func Encode(paths []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteByte('\n')
	for _, p := range paths {
		buf.WriteString("file ")
		buf.WriteString(quote(p))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode parses a manifest produced by Encode.
func Decode(data []byte) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == header || strings.HasPrefix(line, "#") {
			continue
		}
		rest, ok := strings.CutPrefix(line, "file ")
		if !ok {
			return nil, fmt.Errorf("manifest: line %d: unexpected directive %q", lineNo, line)
		}
		p, err := unquote(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("manifest: line %d: %w", lineNo, err)
		}
		paths = append(paths, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return paths, nil
}

// quote wraps p in single quotes; an embedded quote becomes '\''.
func quote(p string) string {
	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}

func unquote(s string) (string, error) {
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case c == '\\' && !inQuote && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		default:
			b.WriteByte(c)
		}
	}
	if inQuote {
		return "", fmt.Errorf("unterminated quote in %q", s)
	}
	return b.String(), nil
}

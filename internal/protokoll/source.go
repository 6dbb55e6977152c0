package protokoll

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeSource returns the source as a string. Only UTF-8 is accepted; a
// leading byte order mark is removed and CRLF line endings are normalised.
func DecodeSource(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", ErrEncoding
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n"), nil
}

// FilterLines checks every line of the source. A line starting with "%!" is
// a txt2tags command and aborts with a ForbiddenCommandError; any other line
// starting with "%" is a comment and is dropped.
func FilterLines(text string) (string, error) {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "%!"):
			return "", &ForbiddenCommandError{Line: i + 1, Text: line}
		case strings.HasPrefix(line, "%"):
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), nil
}

// bracketTag matches "[[ name arg1 arg2 ]]".
var bracketTag = regexp.MustCompile(`\[\[\s*([a-z_]+)((?:\s+[^\s\[\]]+)*)\s*\]\]`)

// Delimiters of the template actions Normalize emits. Any other text,
// including "{{ }}", is literal.
const (
	ActionLeft  = "{%"
	ActionRight = "%}"
)

// escapeLiteral makes occurrences of ActionLeft in author text print themselves.
var escapeLiteral = strings.NewReplacer(ActionLeft, ActionLeft+strconv.Quote(ActionLeft)+ActionRight)

// Normalize rewrites bracket tags into template actions. Unknown tags and
// tags of disabled features are kept literally.
func (r *TagRegistry) Normalize(text string, features Features) string {
	var b strings.Builder
	last := 0
	for _, loc := range bracketTag.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(escapeLiteral.Replace(text[last:loc[0]]))
		last = loc[1]

		match := text[loc[0]:loc[1]]
		t, ok := r.Lookup(text[loc[2]:loc[3]])
		if !ok || !features.Enabled(t.Feature) {
			b.WriteString(escapeLiteral.Replace(match))
			continue
		}
		args := strings.Fields(text[loc[4]:loc[5]])

		switch t.Form {
		case BlockStart:
			b.WriteString(action("with $" + t.Block + " := " + t.Name + quoteArgs(args)))
		case BlockEnd:
			b.WriteString(action("$" + t.Block + ".Outcome"))
			b.WriteString(action("end"))
		case Placeholder:
			b.WriteString(action("." + t.Field))
		default:
			b.WriteString(action(t.Name + quoteArgs(args)))
		}
	}
	b.WriteString(escapeLiteral.Replace(text[last:]))
	return b.String()
}

func action(s string) string {
	return ActionLeft + s + ActionRight
}

func quoteArgs(args []string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(a))
	}
	return b.String()
}

package protokoll

import (
	"fmt"
	"strconv"
	"strings"
)

// VoteKind selects the label used in an outcome sentence.
type VoteKind int

const (
	Motion VoteKind = iota
	PointOfOrder
)

func (k VoteKind) Label() string {
	if k == PointOfOrder {
		return "Der GO-Antrag"
	}
	return "Der Antrag"
}

// Vote is the tally of a motion. It is computed at render time and never stored.
type Vote struct {
	Pro         int
	Con         int
	Abstentions int
	ForcedVote  bool
}

// ParseVote parses the key=value arguments of a motion tag. Recognised keys
// are pro, con, enthaltung and gegenrede. Counts default to 0, gegenrede
// defaults to true. Positional arguments, unknown keys, repeated keys and
// an empty argument list are rejected.
func ParseVote(tag string, args []string) (Vote, error) {
	v := Vote{ForcedVote: true}
	if len(args) == 0 {
		return v, tagErrorf(tag, "at least one of pro, con, enthaltung or gegenrede is required")
	}

	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return v, tagErrorf(tag, "positional argument %q is not allowed", arg)
		}
		if seen[key] {
			return v, tagErrorf(tag, "argument %q given twice", key)
		}
		seen[key] = true

		switch key {
		case "pro":
			n, err := parseCount(tag, key, value)
			if err != nil {
				return v, err
			}
			v.Pro = n
		case "con":
			n, err := parseCount(tag, key, value)
			if err != nil {
				return v, err
			}
			v.Con = n
		case "enthaltung":
			n, err := parseCount(tag, key, value)
			if err != nil {
				return v, err
			}
			v.Abstentions = n
		case "gegenrede":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return v, tagErrorf(tag, "gegenrede must be true or false, got %q", value)
			}
			v.ForcedVote = b
		default:
			return v, tagErrorf(tag, "unknown argument %q", key)
		}
	}
	return v, nil
}

func parseCount(tag, key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, tagErrorf(tag, "%s must be a non-negative integer, got %q", key, value)
	}
	return n, nil
}

// Tally spells out the nonzero vote categories, e.g.
// "2 Stimmen dafür, 2 Stimmen dagegen und 1 Enthaltung".
func (v Vote) Tally() string {
	var parts []string
	if v.Pro > 0 {
		parts = append(parts, fmt.Sprintf("%d %s dafür", v.Pro, plural(v.Pro, "Stimme", "Stimmen")))
	}
	if v.Con > 0 {
		parts = append(parts, fmt.Sprintf("%d %s dagegen", v.Con, plural(v.Con, "Stimme", "Stimmen")))
	}
	if v.Abstentions > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", v.Abstentions, plural(v.Abstentions, "Enthaltung", "Enthaltungen")))
	}

	switch len(parts) {
	case 0:
		return "0 abgegebenen Stimmen"
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " und " + parts[len(parts)-1]
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

// Sentence returns the outcome sentence for the vote.
func (v Vote) Sentence(kind VoteKind) string {
	label := kind.Label()
	switch {
	case !v.ForcedVote:
		return label + " wurde ohne Gegenrede angenommen."
	case v.Pro == v.Con:
		return label + " war mit " + v.Tally() + " ergebnislos."
	case v.Pro > v.Con:
		return label + " wurde mit " + v.Tally() + " angenommen."
	default:
		return label + " wurde mit " + v.Tally() + " abgelehnt."
	}
}

// Render appends the outcome sentence to the wrapped text.
func (v Vote) Render(kind VoteKind, body string) string {
	return body + "\n" + v.Sentence(kind)
}

// VoteBlock is the value a motion start tag yields inside a template. The
// matching end tag emits Outcome after the wrapped text.
type VoteBlock struct {
	Vote
	Kind VoteKind
}

func (b VoteBlock) Outcome() string {
	return b.Vote.Render(b.Kind, "")
}

package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Complete resolves the first word of input against ctx. Any further words
// are carried through unchanged as arguments. It never fails: an empty or
// ambiguous buffer is an ordinary result.
func Complete(ctx Context, input string) Result {
	res := Result{Input: input, Kind: NoMatch}
	tokens := tokenise(normaliseInput(input))
	head, rest := "", ""
	if len(tokens) > 0 {
		head = tokens[0]
		rest = strings.Join(tokens[1:], " ")
	}

	all := ctx.All()
	matches := make([]string, 0, len(all))
	for _, cand := range all {
		if cand == head {
			res.Kind = Completed
			res.Value = withArgs(cand, rest)
			res.Candidates = []string{cand}
			return res
		}
		if strings.HasPrefix(cand, head) {
			matches = append(matches, cand)
		}
	}

	switch len(matches) {
	case 0:
	case 1:
		res.Kind = Completed
		res.Value = withArgs(matches[0], rest)
		res.Candidates = matches
		return res
	default:
		res.Kind = Ambiguous
		res.Value = commonPrefix(matches)
		res.Candidates = matches
		return res
	}

	if isNumeric(head) {
		return res
	}
	if suggestions := closest(head, ctx.Tokens); len(suggestions) > 0 {
		res.Kind = Suggestion
		res.Value = withArgs(suggestions[0], rest)
		res.Candidates = suggestions
		res.NeedsConfirm = true
	}
	return res
}

// Completions lists every token in ctx that starts with prefix.
func (c Context) Completions(prefix string) []string {
	prefix = normaliseInput(prefix)
	out := []string{}
	for _, cand := range c.All() {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, cand)
		}
	}
	return out
}

func typoThreshold(runes int) int {
	switch {
	case runes <= 2:
		return 0
	case runes <= 4:
		return 1
	default:
		return 2
	}
}

// closest returns the tokens at the smallest edit distance from word, in
// context order. Each token only accepts typos within its own threshold.
func closest(word string, tokens []string) []string {
	n := utf8.RuneCountInString(word)
	best := -1
	var out []string
	for _, tok := range tokens {
		size := utf8.RuneCountInString(tok)
		limit := typoThreshold(size)
		if limit == 0 {
			continue
		}
		diff := n - size
		if diff < 0 {
			diff = -diff
		}
		if diff > limit {
			continue
		}
		dist := levenshtein.ComputeDistance(word, tok)
		switch {
		case dist > limit:
		case best < 0 || dist < best:
			best = dist
			out = []string{tok}
		case dist == best:
			out = append(out, tok)
		}
	}
	return out
}

func commonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, v := range values[1:] {
		for !strings.HasPrefix(v, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
		}
	}
	return prefix
}

func withArgs(token, rest string) string {
	if rest == "" {
		return token
	}
	return token + " " + rest
}

package normalize

import (
	"strings"

	"golang.org/x/text/width"
)

// CanonicalizeText folds character width (full-width to half-width and
// half-width katakana to full-width), lowercases, and collapses runs of
// whitespace to single spaces.
func CanonicalizeText(s string) string {
	s = width.Fold.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalizeEmail canonicalizes an email address to its
// local-part@domain form. Returns "" for values that do not look like
// an address.
func CanonicalizeEmail(s string) string {
	s = CanonicalizeText(s)
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return ""
	}
	return s
}

// CanonicalizeHandle strips a leading "@" and any URL-ish prefix from a
// handle and canonicalizes it.
func CanonicalizeHandle(s string) string {
	s = CanonicalizeText(s)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimPrefix(s, "@")
}

// NameVariants expands a canonical name into its ordered matching forms:
// the name itself, the token-reversed form (family/given reordering),
// an underscore-joined form and a concatenated form. Single-token names
// (common for CJK scripts, where no space separates family and given
// name) yield only themselves.
func NameVariants(name string) []string {
	name = CanonicalizeText(name)
	if name == "" {
		return nil
	}

	tokens := strings.Fields(name)
	variants := []string{name}
	if len(tokens) > 1 {
		reversed := make([]string, len(tokens))
		for i, tok := range tokens {
			reversed[len(tokens)-1-i] = tok
		}
		variants = append(variants,
			strings.Join(reversed, " "),
			strings.Join(tokens, "_"),
			strings.Join(reversed, "_"),
			strings.Join(tokens, ""),
		)
	}

	// Dedupe while preserving first-seen order.
	seen := make(map[string]struct{}, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

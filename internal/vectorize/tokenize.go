package vectorize

import (
	"strings"
	"unicode"

	"github.com/RadhiFadlillah/whatlanggo"

	"github.com/jonathan/talent-sourcer/internal/normalize"
)

const (
	minLatinTokenLen = 3
	// cjkRatioThreshold mirrors the classic heuristic: a fifth of the
	// runes being CJK marks the document as Japanese even when language
	// detection is inconclusive.
	cjkRatioThreshold = 0.2
)

// Tokenize segments text into comparable terms with language-aware
// handling of mixed-script input. Latin runs become lowercase word
// tokens (keeping tech-suffix runes like + # .); CJK runs become
// character bigrams so that adjacent scripts are never mis-segmented
// into one run. Stop words are filtered per detected language.
func Tokenize(text string) []string {
	text = normalize.CanonicalizeText(text)
	if text == "" {
		return nil
	}

	lang := whatlanggo.DetectLang(text)
	japanese := lang == whatlanggo.Jpn || cjkRatio(text) > cjkRatioThreshold
	english := lang == whatlanggo.Eng || !japanese

	var tokens []string
	var latin strings.Builder
	var cjk []rune

	flushLatin := func() {
		if latin.Len() == 0 {
			return
		}
		tok := strings.TrimRight(latin.String(), ".")
		latin.Reset()
		if len([]rune(tok)) < minLatinTokenLen || isNumeric(tok) {
			return
		}
		if english {
			if _, stop := englishStopWords[tok]; stop {
				return
			}
		}
		tokens = append(tokens, tok)
	}
	flushCJK := func() {
		if len(cjk) < 2 {
			cjk = cjk[:0]
			return
		}
		for i := 0; i+1 < len(cjk); i++ {
			bigram := string(cjk[i : i+2])
			if japanese {
				if _, stop := japaneseStopWords[bigram]; stop {
					continue
				}
			}
			tokens = append(tokens, bigram)
		}
		cjk = cjk[:0]
	}

	for _, r := range text {
		switch {
		case isCJK(r):
			flushLatin()
			cjk = append(cjk, r)
		case isLatinWordRune(r):
			flushCJK()
			latin.WriteRune(r)
		default:
			flushLatin()
			flushCJK()
		}
	}
	flushLatin()
	flushCJK()

	return tokens
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}

func isLatinWordRune(r rune) bool {
	if r == '+' || r == '#' || r == '.' || r == '-' || r == '_' {
		return true
	}
	return !isCJK(r) && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return tok != ""
}

func cjkRatio(text string) float64 {
	total, cjk := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isCJK(r) {
			cjk++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cjk) / float64(total)
}

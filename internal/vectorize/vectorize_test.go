package vectorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_English(t *testing.T) {
	tokens := Tokenize("Python NLP engineer with Transformers")
	assert.Equal(t, []string{"python", "nlp", "engineer", "transformers"}, tokens)
}

func TestTokenize_MixedScript(t *testing.T) {
	// A CJK run adjacent to a latin run must be segmented separately,
	// never as one token.
	tokens := Tokenize("山田太郎はPythonエンジニア")
	assert.Contains(t, tokens, "python")
	assert.Contains(t, tokens, "山田")
	assert.Contains(t, tokens, "太郎")
	for _, tok := range tokens {
		assert.NotContains(t, tok, "python山")
	}
}

func TestTokenize_StopWordsAndNoise(t *testing.T) {
	tokens := Tokenize("the engineer and the team")
	assert.Equal(t, []string{"engineer", "team"}, tokens)

	assert.Empty(t, Tokenize("42 17 9"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("  ,,, !!! "))
}

func TestTokenize_WidthAndCaseFolding(t *testing.T) {
	assert.Equal(t, Tokenize("python nlp"), Tokenize("ＰＹＴＨＯＮ　ＮＬＰ"))
}

func TestFit_Deterministic(t *testing.T) {
	corpus := []string{
		"python nltk transformers nlp",
		"go kubernetes infrastructure",
		"python データ分析エンジニア",
	}

	a := Fit(corpus)
	b := Fit(corpus)
	assert.Equal(t, a.idf, b.idf)

	va, err := a.Vector("python nlp engineer")
	require.NoError(t, err)
	vb, err := b.Vector("python nlp engineer")
	require.NoError(t, err)
	assert.Equal(t, va, vb, "identical corpus and text must yield identical vectors")
}

func TestVector_UnknownTermsIgnored(t *testing.T) {
	m := Fit([]string{"python nlp", "go kubernetes"})

	v, err := m.Vector("python blockchain")
	require.NoError(t, err)
	assert.Contains(t, v, "python")
	assert.NotContains(t, v, "blockchain", "terms outside the fitted vocabulary must not grow it")
}

func TestVector_EmptyText(t *testing.T) {
	m := Fit([]string{"python nlp"})

	v, err := m.Vector("")
	var verr *VectorizationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, v, "unsupported text degrades to a zero vector, not a fatal error")
}

func TestVector_L2Normalized(t *testing.T) {
	m := Fit([]string{"python nlp transformers", "go kubernetes"})
	v, err := m.Vector("python nlp python")
	require.NoError(t, err)

	var norm float64
	for _, w := range v {
		norm += w * w
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestVector_NoVocabularyOverlap(t *testing.T) {
	m := Fit([]string{"python nlp"})
	v, err := m.Vector("rust wasm")
	require.NoError(t, err)
	assert.Empty(t, v)
}

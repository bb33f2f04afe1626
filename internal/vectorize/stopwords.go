package vectorize

// englishStopWords filters high-frequency English words that add noise
// to term weighting.
var englishStopWords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "you": {}, "are": {},
	"have": {}, "will": {}, "this": {}, "that": {}, "from": {}, "our": {},
	"your": {}, "their": {}, "they": {}, "about": {}, "which": {},
	"what": {}, "who": {}, "how": {}, "can": {}, "not": {}, "but": {},
	"all": {}, "also": {}, "more": {}, "than": {}, "into": {}, "has": {},
	"its": {}, "was": {}, "were": {}, "been": {}, "each": {}, "new": {},
	"use": {}, "using": {}, "used": {}, "such": {}, "per": {}, "via": {},
}

// japaneseStopWords filters function-word bigrams and pronouns from CJK
// segmentation output.
var japaneseStopWords = map[string]struct{}{
	"こと": {}, "もの": {}, "ところ": {}, "それ": {}, "これ": {}, "あれ": {},
	"ここ": {}, "そこ": {}, "ため": {}, "よう": {}, "そう": {}, "どう": {},
	"です": {}, "ます": {}, "ある": {}, "いる": {}, "する": {}, "なる": {},
	"また": {}, "など": {}, "まで": {}, "から": {}, "して": {}, "だけ": {},
	"たち": {}, "わけ": {}, "はず": {}, "とき": {}, "いう": {}, "ので": {},
}

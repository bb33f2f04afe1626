package resolve

import (
	"strings"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// blockingKeys derives the coarse comparison signals for one record:
// normalized handle (including underscore-joined name forms), email
// local-part@domain, exact normalized name variants, and topic slugs.
// Only records sharing at least one key are scored pairwise, which
// keeps comparison cost below quadratic.
func blockingKeys(rec *types.SourceRecord) []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(prefix, v string) {
		if !types.Known(v) {
			return
		}
		key := prefix + ":" + v
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	add("handle", rec.Handle)
	add("email", rec.Email)
	add("orcid", rec.ORCID)
	for _, variant := range rec.NameVariants {
		add("name", variant)
		// A space-separated variant also blocks under its handle form so
		// that "taro yamada" meets the handle "taro_yamada".
		if strings.Contains(variant, " ") {
			add("handle", strings.ReplaceAll(variant, " ", "_"))
		} else if strings.Contains(variant, "_") {
			add("handle", variant)
		}
	}
	for _, topic := range rec.Topics {
		add("topic", topicSlug(topic))
	}
	return keys
}

// topicSlug canonicalizes a topic or repository name to a comparable slug.
func topicSlug(topic string) string {
	return strings.Trim(strings.ReplaceAll(strings.ReplaceAll(topic, " ", "-"), "_", "-"), "-")
}

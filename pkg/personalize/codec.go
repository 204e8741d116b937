// Package personalize captures visitor attributes at the edge, carries the
// resulting variant assignment through the request, and turns it into the
// variant aliases understood by content queries.
package personalize

import (
	"sort"
	"strings"
)

const (
	// AliasPrefix starts every variant alias sent to the entry store.
	AliasPrefix = "cs_personalize_"

	pairSep  = ","
	fieldSep = "_"
)

// Variants maps an experience short uid to its active variant short uid.
type Variants map[string]string

// Encode joins "experience_variant" pairs with commas, ordered by
// experience so equal maps encode identically.
func Encode(v Variants) string {
	pairs := make([]string, 0, len(v))
	for _, exp := range v.experiences() {
		pairs = append(pairs, exp+fieldSep+v[exp])
	}
	return strings.Join(pairs, pairSep)
}

// Decode splits on commas, then each pair on its first underscore. Pairs
// missing either side are skipped rather than failing the whole value.
func Decode(param string) Variants {
	out := Variants{}
	for _, pair := range strings.Split(param, pairSep) {
		exp, variant, ok := strings.Cut(strings.TrimSpace(pair), fieldSep)
		if !ok || exp == "" || variant == "" {
			continue
		}
		out[exp] = variant
	}
	return out
}

// Alias projects one pair to cs_personalize_{experience}_{variant}.
func Alias(experience, variant string) string {
	return AliasPrefix + experience + fieldSep + variant
}

// ParseAlias reverses Alias.
func ParseAlias(alias string) (experience, variant string, ok bool) {
	rest, found := strings.CutPrefix(alias, AliasPrefix)
	if !found {
		return "", "", false
	}
	experience, variant, ok = strings.Cut(rest, fieldSep)
	if !ok || experience == "" || variant == "" {
		return "", "", false
	}
	return experience, variant, true
}

// Aliases projects every pair with a variant, ordered by experience.
func (v Variants) Aliases() []string {
	out := make([]string, 0, len(v))
	for _, exp := range v.experiences() {
		if v[exp] == "" {
			continue
		}
		out = append(out, Alias(exp, v[exp]))
	}
	return out
}

// ParamToAliases decodes a variant parameter straight to aliases.
func ParamToAliases(param string) []string {
	return Decode(param).Aliases()
}

func (v Variants) experiences() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

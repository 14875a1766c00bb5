// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenLength is the minimum rune count for a token to be kept.
const minTokenLength = 3

// stopwords are filtered after accent stripping, so the set holds
// folded forms only. Includes the site brand terms, which carry no
// ranking signal of their own.
var stopwords = map[string]struct{}{
	"a": {}, "aj": {}, "alebo": {}, "ani": {},
	"na": {}, "v": {}, "vo": {}, "do": {}, "z": {}, "za": {}, "od": {},
	"o": {}, "u": {}, "s": {}, "so": {},
	"je": {}, "su": {}, "som": {}, "si": {}, "sa": {}, "by": {}, "byt": {},
	"co": {}, "kto": {}, "ktory": {}, "ktora": {}, "ktore": {},
	"ak": {}, "ake": {}, "ako": {}, "ze": {},
	"pre": {}, "pri": {}, "nad": {}, "pod": {}, "po": {},
	"uz": {}, "len": {}, "ci": {}, "tiez": {},
	"slovenska": {}, "sporitelna": {}, "slsp": {}, "sk": {},
}

// businessHints mark a query as business-vertical oriented. Folded forms.
var businessHints = map[string]struct{}{
	"biznis":     {},
	"firma":      {},
	"firemny":    {},
	"podnik":     {},
	"podnikanie": {},
	"zivnost":    {},
	"zivnostnik": {},
}

// Normalize lowercases s and strips combining diacritical marks, so that
// "Platobná Karta" and "platobna karta" fold to the same form.
func Normalize(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(stripper, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Tokenize normalizes s, splits it on non-alphanumeric runes, and drops
// short tokens and stopwords. The same tokenizer is applied to queries
// and to chunk text so keyword scoring compares like with like.
func Tokenize(s string) []string {
	folded := Normalize(s)
	var tokens []string
	for _, raw := range strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(raw) < minTokenLength {
			continue
		}
		if _, stop := stopwords[raw]; stop {
			continue
		}
		tokens = append(tokens, raw)
	}
	return tokens
}

// HasBusinessHint reports whether any token marks the query as aimed at
// the business vertical of the site.
func HasBusinessHint(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := businessHints[t]; ok {
			return true
		}
	}
	return false
}

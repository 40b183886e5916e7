// Package chunk splits scraped page text into paragraphs and picks the ones
// most likely to mention assets under management, keeping LLM prompts short.
package chunk

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minParagraphLen drops navigation crumbs, button labels and other fragments
// that carry no extractable signal.
const minParagraphLen = 50

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// keywords are matched accent-insensitively against folded paragraph text.
// Presence is scored once per keyword, not per occurrence.
var keywords = []string{
	"patrimonio sob gestao",
	"patrimonio",
	"aum",
	"assets under management",
	"sob gestao",
	"sob custodia",
	"bilhoes",
	"milhoes",
	"bilhao",
	"milhao",
	"r$",
	"us$",
	"fundo",
	"gestora",
	"investimento",
}

// Chunk is a candidate paragraph with its keyword score.
type Chunk struct {
	Text  string
	Score int
}

// Fold lowercases s and strips combining accent marks, so "Patrimônio" and
// "patrimonio" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Select splits fullText into paragraphs, scores each whole paragraph by
// keyword presence and returns at most maxChunks chunks drawn from the
// highest scoring ones. Paragraphs without any keyword are dropped; ties keep
// document order. Selected paragraphs longer than maxCharsPerChunk are split
// on word boundaries afterwards, each piece carrying the paragraph's score
// and counting against maxChunks.
func Select(fullText string, maxChunks, maxCharsPerChunk int) []Chunk {
	var paragraphs []Chunk
	for _, para := range paragraphSplit.Split(fullText, -1) {
		para = strings.TrimSpace(para)
		if len(para) < minParagraphLen {
			continue
		}
		if s := score(para); s > 0 {
			paragraphs = append(paragraphs, Chunk{Text: para, Score: s})
		}
	}

	sort.SliceStable(paragraphs, func(i, j int) bool {
		return paragraphs[i].Score > paragraphs[j].Score
	})

	var chunks []Chunk
	for _, p := range paragraphs {
		for _, piece := range splitWords(p.Text, maxCharsPerChunk) {
			if len(chunks) == maxChunks {
				return chunks
			}
			chunks = append(chunks, Chunk{Text: piece, Score: p.Score})
		}
	}
	return chunks
}

func score(text string) int {
	folded := Fold(text)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			n++
		}
	}
	return n
}

// splitWords breaks text into pieces of at most maxChars, cutting on word
// boundaries. A single word longer than maxChars is cut mid-word.
func splitWords(text string, maxChars int) []string {
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var pieces []string
	var b strings.Builder
	for _, word := range strings.Fields(text) {
		if b.Len() > 0 && b.Len()+1+len(word) > maxChars {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		for len(word) > maxChars {
			pieces = append(pieces, word[:maxChars])
			word = word[maxChars:]
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

package searchindex

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Okapi BM25 parameters.
const (
	paramK1      = 1.2
	paramB       = 0.75
	paramEpsilon = 0.25
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// field is weighted text; a weight repeats the field's tokens in the
// composite document.
type field struct {
	text   string
	weight int
}

type scored struct {
	doc   int
	score float64
}

// bm25 is an immutable index over composite documents, safe for
// concurrent reads.
type bm25 struct {
	termFreqs []map[string]int
	lengths   []int
	avgLength float64
	idf       map[string]float64
}

func newBM25(docs [][]field) *bm25 {
	idx := &bm25{
		termFreqs: make([]map[string]int, len(docs)),
		lengths:   make([]int, len(docs)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	total := 0
	for i, fields := range docs {
		var tokens []string
		for _, f := range fields {
			ft := tokenize(f.text)
			for n := 0; n < f.weight; n++ {
				tokens = append(tokens, ft...)
			}
		}
		idx.lengths[i] = len(tokens)
		total += len(tokens)

		tf := make(map[string]int)
		for _, tok := range tokens {
			if tf[tok] == 0 {
				docFreq[tok]++
			}
			tf[tok]++
		}
		idx.termFreqs[i] = tf
	}
	if len(docs) > 0 {
		idx.avgLength = float64(total) / float64(len(docs))
	}

	n := float64(len(docs))
	for term, df := range docFreq {
		v := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		if v <= 0 {
			v = paramEpsilon
		}
		idx.idf[term] = v
	}
	return idx
}

// search returns documents with a positive score, best first. Ties keep
// document order.
func (idx *bm25) search(query string) []scored {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	var hits []scored
	for i := range idx.termFreqs {
		if s := idx.score(i, terms); s > 0 {
			hits = append(hits, scored{doc: i, score: s})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	return hits
}

func (idx *bm25) score(doc int, terms []string) float64 {
	tf := idx.termFreqs[doc]
	dl := float64(idx.lengths[doc])

	var s float64
	for _, term := range terms {
		idf, ok := idx.idf[term]
		if !ok {
			continue
		}
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		s += idf * f * (paramK1 + 1) / (f + paramK1*(1-paramB+paramB*dl/idx.avgLength))
	}
	return s
}

// tokenize lower-cases text and splits it into letter/digit runs of at
// least two characters.
func tokenize(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := matches[:0]
	for _, m := range matches {
		if len([]rune(m)) >= 2 {
			tokens = append(tokens, m)
		}
	}
	return tokens
}

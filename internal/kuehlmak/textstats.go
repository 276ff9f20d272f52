package kuehlmak

// Ngram is a fixed-width token sequence: 1 symbol for a unigram, 2 for a
// bigram, 3 for a trigram. Symbols are corpus-assigned small integers
// ("tokens"), not runes directly, so TextStats can intern arbitrary
// alphabets compactly (spec.md section 6, TextStats collaborator contract).
type Ngram [3]uint32

// TextStats is the corpus-statistics collaborator the Evaluator consumes.
// Its implementation (corpus ingestion, serialization, on-disk format) is
// out of scope for this package; only this contract matters here.
type TextStats interface {
	TotalBigrams() uint64
	TotalTrigrams() uint64
	TokenBase() uint32

	// GetSymbol returns the corpus token and occurrence count for a layout
	// glyph, and false if the corpus never observed it.
	GetSymbol(r rune) (count uint64, token uint32, ok bool)

	// TokenToNgram expands a token back into its symbol sequence: [t0] for
	// a unigram token, [t0,t1] for a bigram token, [t0,t1,t2] for a trigram
	// token. Unused trailing slots are left zero.
	TokenToNgram(token uint32) Ngram

	// IterBigrams and IterTrigrams yield (ngram, count, token) in
	// descending count order, supporting the Evaluator's precision
	// truncation (spec.md 4.4 step 4).
	IterBigrams(yield func(ngram Ngram, count uint64, token uint32) bool)
	IterTrigrams(yield func(ngram Ngram, count uint64, token uint32) bool)
}

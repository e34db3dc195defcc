// Package generator produces marketing copy for a creative concept by
// randomized template substitution. It performs no I/O and never fails.
package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Generator draws from the fixed string pools. The zero value is not usable;
// construct one with New or NewWithSeed. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// Bundle is the full set of copy generated for one concept.
type Bundle struct {
	ImagePrompts       []string
	ListingTitles      []string
	ListingTags        []string
	ListingDescription string
	SocialCaption      string
}

// New returns a Generator backed by the runtime's shared random source.
func New() *Generator {
	return &Generator{}
}

// NewWithSeed returns a Generator with a deterministic source.
func NewWithSeed(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate runs every generator for concept. The caller guarantees a
// trimmed, non-empty concept.
func (g *Generator) Generate(concept string) Bundle {
	titles := g.ListingTitles(concept)
	return Bundle{
		ImagePrompts:       g.ImagePrompts(concept),
		ListingTitles:      titles,
		ListingTags:        g.ListingTags(concept),
		ListingDescription: g.ListingDescription(concept, titles),
		SocialCaption:      g.SocialCaption(concept),
	}
}

// PlaceholderImages returns n preview image URLs for the results page.
func PlaceholderImages(n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("https://picsum.photos/400/500?random=%d&blur=1", i))
	}
	return out
}

// choice picks one element uniformly at random.
func (g *Generator) choice(pool []string) string {
	return pool[g.intN(len(pool))]
}

func (g *Generator) intN(n int) int {
	if g.rnd == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

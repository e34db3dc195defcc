package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cppla/artcopy/utils"
)

const (
	// TagCount is the number of tags a marketplace listing accepts.
	TagCount = 13
	// MaxTagLength is the marketplace limit on a single tag, in characters.
	MaxTagLength = 20
	// PaddingTag fills the tag list when too few unique tags exist.
	PaddingTag = "digital art"
)

var (
	emotions = []string{
		"Dreamy", "Serene", "Mystical", "Enchanting", "Peaceful",
		"Romantic", "Whimsical", "Ethereal", "Magical", "Tranquil",
	}

	artTypes = []string{
		"Digital Art Print", "Wall Art Download", "Printable Art",
		"Digital Download", "Art Print", "Instant Download",
	}

	rooms = []string{
		"Bedroom Decor", "Living Room Art", "Office Wall Art",
		"Home Decor", "Nursery Art", "Boho Decor",
	}

	baseTags = []string{
		"digital download", "printable art", "wall art", "home decor",
		"instant download", "digital print", "art print", "boho decor",
	}

	styleTags = []string{
		"watercolor", "abstract", "modern art", "minimalist", "nature art",
		"landscape art", "botanical print", "floral art", "vintage style",
	}

	stopWords = map[string]struct{}{
		"a": {}, "an": {}, "the": {}, "and": {}, "or": {},
		"but": {}, "in": {}, "on": {}, "at": {}, "to": {},
	}
)

// ListingTitles returns three SEO listing titles built around the
// title-cased concept.
func (g *Generator) ListingTitles(concept string) []string {
	title := titleCase(concept)
	titles := make([]string, 0, 3)

	emotion1 := g.choice(emotions)
	artType := g.choice(artTypes)
	titles = append(titles, fmt.Sprintf("%s %s %s | %s", emotion1, title, artType, g.choice(rooms)))

	emotion2 := g.choice(emotions)
	titles = append(titles, fmt.Sprintf("%s Art Print | %s Digital Download | Instant Wall Art", title, emotion2))

	room := g.choice(rooms)
	emotion3 := g.choice(emotions)
	titles = append(titles, fmt.Sprintf("%s %s Print | %s | Downloadable Art", emotion3, title, room))

	return titles
}

// ListingTags returns exactly TagCount tags of at most MaxTagLength
// characters. When fewer unique tags exist the list is padded with
// PaddingTag, which may repeat a PaddingTag already present.
func (g *Generator) ListingTags(concept string) []string {
	var conceptTags []string
	for _, word := range strings.Fields(strings.ToLower(concept)) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= MaxTagLength {
			conceptTags = append(conceptTags, word)
		}
	}

	all := make([]string, 0, len(baseTags)+len(conceptTags)+len(styleTags))
	all = append(all, baseTags...)
	all = append(all, conceptTags...)
	all = append(all, styleTags...)

	valid := all[:0]
	for _, tag := range all {
		if utf8.RuneCountInString(tag) <= MaxTagLength {
			valid = append(valid, tag)
		}
	}

	tags := utils.Unique(valid)
	if len(tags) >= TagCount {
		return tags[:TagCount]
	}
	for len(tags) < TagCount {
		tags = append(tags, PaddingTag)
	}
	return tags
}

// ListingDescription returns the full listing body. titles is accepted for
// call-site symmetry with ListingTitles but does not affect the output.
func (g *Generator) ListingDescription(concept string, titles []string) string {
	return fmt.Sprintf(descriptionTemplate, concept, concept, concept)
}

const descriptionTemplate = `✨ Transform your space with this %s digital art print! ✨

🎨 THE STORY
This beautiful %s artwork was created to bring tranquility and natural beauty into your home. Whether you're looking to create a peaceful sanctuary in your bedroom or add a touch of nature to your living space, this print captures the essence of %s in stunning detail.

📥 WHAT YOU GET
• High-resolution digital files (300 DPI)
• Multiple sizes included: 8x10, 11x14, 16x20, 18x24
• JPEG format for easy printing
• Instant download - no waiting!
• Print as many times as you want

🏠 PERFECT FOR
• Bedroom wall art
• Living room decor
• Office inspiration
• Nursery art
• Gallery walls
• Housewarming gifts
• Any space needing natural beauty

🖨️ PRINTING TIPS
• Use high-quality photo paper for best results
• Print at your local photo center or at home
• Frame with a mat for a professional look
• No physical item will be shipped

💝 This makes a thoughtful gift for nature lovers, art enthusiasts, or anyone who appreciates beautiful home decor!

📧 Questions? I'm here to help! Message me anytime.

#DigitalDownload #PrintableArt #WallArt #HomeDecor #InstantDownload`

// titleCase upper-cases the first letter of every word and lower-cases the
// rest. Apostrophes stay inside a word, so "don't" becomes "Don't". A Caser
// is stateful, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

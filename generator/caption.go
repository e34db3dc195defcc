package generator

import "fmt"

// SocialHashtags closes every social caption.
const SocialHashtags = "#HomeDecor #WallArt #PrintableArt #DigitalDownload #BedroomDecor #LivingRoomArt #NatureArt #InstantDownload #WallDecor #ArtPrint #HomeDesign #InteriorDesign #BohoDecor #ModernArt #WallArtPrint"

// captionTemplate keeps the trailing space after "gift!" that published
// captions carry; the explicit newlines stop editors from trimming it.
const captionTemplate = "Beautiful %s art print perfect for your home! 🏠✨\n" +
	"\n" +
	"This dreamy digital download adds instant charm to any room. Perfect for bedroom decor, living room walls, or as a thoughtful gift! \n" +
	"\n" +
	"💝 Instant download - print at home or your local photo center\n" +
	"🖼️ Multiple sizes included\n" +
	"🌿 Brings nature indoors\n" +
	"\n" +
	"%s"

// SocialCaption returns a pin caption mentioning concept once.
func (g *Generator) SocialCaption(concept string) string {
	return fmt.Sprintf(captionTemplate, concept, SocialHashtags)
}

package generator

import "fmt"

var (
	styles = []string{
		"watercolor painting", "oil painting", "digital art", "acrylic painting",
		"ink illustration", "pencil sketch", "gouache", "mixed media",
		"impressionist style", "abstract expressionism", "minimalist design",
	}

	lighting = []string{
		"golden hour lighting", "soft diffused light", "dramatic shadows",
		"ethereal glow", "warm sunset light", "cool morning mist",
		"dappled sunlight", "moody atmosphere", "cinematic lighting",
	}

	technical = []string{
		"--ar 3:4 --v 6", "--ar 2:3 --v 6", "--ar 4:5 --v 6",
		"--ar 3:4 --stylize 750", "--ar 2:3 --stylize 500",
	}
)

// ImagePrompts returns three image-generation prompts: detailed, mood and
// abstract, in that order. Every slot draws its own style, lighting and
// technical suffix, so repeats across slots are expected.
func (g *Generator) ImagePrompts(concept string) []string {
	prompts := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		style := g.choice(styles)
		light := g.choice(lighting)
		tech := g.choice(technical)

		var prompt string
		switch i {
		case 0:
			prompt = fmt.Sprintf("%s, %s, %s, highly detailed, beautiful composition, trending on artstation %s", concept, style, light, tech)
		case 1:
			prompt = fmt.Sprintf("%s, %s, dreamy atmosphere, soft colors, %s, serene and peaceful %s", concept, light, style, tech)
		default:
			prompt = fmt.Sprintf("abstract interpretation of %s, %s, %s, artistic, expressive brushstrokes %s", concept, style, light, tech)
		}
		prompts = append(prompts, prompt)
	}
	return prompts
}

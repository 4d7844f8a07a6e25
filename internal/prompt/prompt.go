package prompt

import (
	"fmt"
	"strings"
)

// DefaultTemplateName is the template the instructions are rendered into
const DefaultTemplateName = "video"

// Placeholder is replaced with the instruction block
const Placeholder = "$input"

// MishapInstructions is the creative brief sent with every frame pair
const MishapInstructions = "Inside the <aside> XML tag, you may think aloud. Analyze both frames. Infer the story that happens between the two frames, and imagine the type of shot that the two frames are part of. Then your main task: imagine a prompt for the continuation of this video shot that shows a SUDDENLY UNFORTUNATE BUT FUNNY (!!!) MISHAP which happens right after the provided 2nd frame. Specifically, in one sentence, describe the type of shot and briefly say what happens. Then in 2-3 short sentences, write a more detailed description of the subject and setting (observed in the provided frames), and the visible action. Finish with a stylistic description of the shot. Print that prompt inside a <samp> XML tag. Remember, it needs to be sudden, unfortunate, and funny (cute, not serious), and the mishap should be of slapstick nature, it must work without sound!"

// Builder renders the instruction block into a named template
type Builder struct {
	loader       TemplateLoader
	templateName string
	instructions string
}

// NewBuilder creates a builder using the mishap instructions
func NewBuilder(loader TemplateLoader, templateName string) *Builder {
	if templateName == "" {
		templateName = DefaultTemplateName
	}
	return &Builder{
		loader:       loader,
		templateName: templateName,
		instructions: MishapInstructions,
	}
}

// Build loads the template and substitutes the instructions. It does not
// depend on any frame pair, so a run calls it once.
func (b *Builder) Build() (string, error) {
	tmpl, err := b.loader.Load(b.templateName)
	if err != nil {
		return "", fmt.Errorf("failed to load prompt template: %w", err)
	}
	return Render(tmpl, b.instructions), nil
}

// Render substitutes input for every placeholder. Templates without a
// placeholder get the input appended on its own line.
func Render(tmpl *Template, input string) string {
	if !strings.Contains(tmpl.Prompt, Placeholder) {
		return strings.TrimRight(tmpl.Prompt, "\n") + "\n" + input
	}
	return strings.ReplaceAll(tmpl.Prompt, Placeholder, input)
}

package conversation

const translationSystemPrompt = `You are a professional academic translator. Translate the passage the user sends.
- Keep technical terms accurate; put the original term in parentheses after its first translation.
- Preserve the original formatting, paragraphs, and numbering.
- Do not add explanations, summaries, or content that is not in the source.`

func translationUserPrompt(passage, language string) string {
	if language == "" {
		return passage
	}
	return "Translate into " + language + ":\n\n" + passage
}

package analysis

import "fmt"

const structureSystemPrompt = `You are a professional academic research assistant. Analyze the paper strictly with this structure:
1. Research background (about 200 words)
2. Methods (about 300 words)
3. Main findings (about 300 words)
4. Contributions and novelty (about 200 words)
5. Limitations and future work (about 200 words)`

func userPrompt(language string) string {
	if language == "" {
		language = "English"
	}
	return fmt.Sprintf("Analyze this paper point by point in %s, in detail, using Markdown.", language)
}

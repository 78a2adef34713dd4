package generator

import (
	"fmt"

	"walink/internal/domain"
)

const articleSystemPrompt = `You are an experienced content writer for a small-business marketing blog about WhatsApp.
Write a complete article in Markdown.

RULES:
- Start with exactly one level-1 heading ("# ") holding the article title.
- Follow with a short introduction paragraph.
- Use level-2 headings ("## ") for sections, with three to five sections.
- End with a conclusion section.
- Write the whole article in %s.
- Output only the Markdown article, no preamble and no code fences.`

const seoSystemPrompt = `You are an SEO assistant. Reply with a single JSON object and nothing else.
The object must have exactly these string fields:
metaTitle (at most 60 characters), metaDescription (at most 160 characters),
keywords (comma separated, 5 to 8 keywords), ogTitle, ogDescription, focusKeyword.
Write every value in %s.`

func languageName(lang domain.Language) string {
	if lang == domain.LangEnglish {
		return "English"
	}
	return "Modern Standard Arabic"
}

func buildArticlePrompt(topic string, lang domain.Language) (systemPrompt, prompt string) {
	return fmt.Sprintf(articleSystemPrompt, languageName(lang)),
		fmt.Sprintf("TOPIC: %s", topic)
}

func buildSEOPrompt(title, excerpt string, lang domain.Language) (systemPrompt, prompt string) {
	return fmt.Sprintf(seoSystemPrompt, languageName(lang)), fmt.Sprintf(`TITLE: %s

<<<EXCERPT
%s
EXCERPT`, title, domain.TruncateRunes(excerpt, 1000))
}

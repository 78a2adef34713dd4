package generator

import (
	"strings"
	"text/template"

	"walink/internal/domain"
)

// TemplateSource marks drafts produced without any provider
const TemplateSource = "template"

// The fallback article has no level-1 heading; the chain sets the title to the topic.
var articleTemplates = map[domain.Language]*template.Template{
	domain.LangArabic: template.Must(template.New("ar").Parse(`## مقدمة

يتناول هذا المقال موضوع {{.}} ويشرح أهم ما تحتاج معرفته للبدء بخطوات واضحة وعملية.

## النقطة الأولى: فهم الأساسيات

قبل التعمق في {{.}} من المهم فهم المفاهيم الأساسية وتحديد الهدف الذي تريد تحقيقه.

## النقطة الثانية: خطوات التطبيق

ابدأ بخطوات صغيرة وقابلة للقياس، وراجع النتائج بانتظام لتحسين طريقة تعاملك مع {{.}}.

## النقطة الثالثة: أخطاء شائعة يجب تجنبها

تجنب التسرع وإهمال آراء العملاء، فهما من أكثر الأسباب التي تقلل من فائدة {{.}}.

## الخاتمة

يمنحك {{.}} فرصة حقيقية للتواصل مع عملائك بشكل أسرع وأقرب. طبّق النقاط السابقة وابدأ اليوم.
`)),
	domain.LangEnglish: template.Must(template.New("en").Parse(`## Introduction

This article covers {{.}} and walks through what you need to know to get started with clear, practical steps.

## Point One: Understand the Basics

Before going deeper into {{.}}, make sure the core ideas are clear and the goal you want to reach is defined.

## Point Two: Put It into Practice

Start with small, measurable steps and review the results regularly to improve how you approach {{.}}.

## Point Three: Common Mistakes to Avoid

Rushing and ignoring customer feedback are the most common reasons {{.}} falls short of expectations.

## Conclusion

{{.}} is a real opportunity to reach your customers faster and more personally. Apply the points above and start today.
`)),
}

// Template renders the deterministic article used when every provider failed
func Template(topic string, lang domain.Language) string {
	tmpl, ok := articleTemplates[lang]
	if !ok {
		tmpl = articleTemplates[domain.DefaultLanguage]
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, topic); err != nil {
		return "## " + topic + "\n"
	}
	return b.String()
}

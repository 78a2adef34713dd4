package http

import (
	_ "embed"
	"html/template"
	"net/http"

	"walink/internal/domain"

	"golang.org/x/text/language"
)

//go:embed templates/notfound.html
var notFoundHTML string

var notFoundTemplate = template.Must(template.New("notfound").Parse(notFoundHTML))

// pageLanguages is ordered like pageMatcher's tags; the first entry is the fallback
var (
	pageLanguages = []domain.Language{domain.LangArabic, domain.LangEnglish}
	pageMatcher   = language.NewMatcher([]language.Tag{language.Arabic, language.English})
)

type notFoundCopy struct {
	Lang      string
	Dir       string
	Title     string
	Heading   string
	Body      string
	HomeLabel string
	HomeURL   string
}

var notFoundCopies = map[domain.Language]notFoundCopy{
	domain.LangArabic: {
		Lang:      "ar",
		Dir:       "rtl",
		Title:     "الرابط غير موجود",
		Heading:   "عذراً، هذا الرابط غير موجود",
		Body:      "ربما تم حذف الرابط أو أن العنوان غير صحيح. تأكد من الرابط وحاول مرة أخرى.",
		HomeLabel: "العودة إلى الصفحة الرئيسية",
	},
	domain.LangEnglish: {
		Lang:      "en",
		Dir:       "ltr",
		Title:     "Link not found",
		Heading:   "Sorry, this link does not exist",
		Body:      "The link may have been removed or the address is wrong. Check it and try again.",
		HomeLabel: "Back to the home page",
	},
}

// notFoundPage renders the styled page shown for unknown short links
type notFoundPage struct {
	homeURL string
}

func newNotFoundPage(homeURL string) *notFoundPage {
	if homeURL == "" {
		homeURL = "/"
	}
	return &notFoundPage{homeURL: homeURL}
}

func (p *notFoundPage) render(w http.ResponseWriter, r *http.Request) {
	page := notFoundCopies[pageLanguage(r)]
	page.HomeURL = p.homeURL

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", page.Lang)
	w.WriteHeader(http.StatusNotFound)
	_ = notFoundTemplate.Execute(w, page)
}

// pageLanguage prefers ?lang=, then Accept-Language, then Arabic
func pageLanguage(r *http.Request) domain.Language {
	if lang := domain.Language(r.URL.Query().Get("lang")); lang.IsValid() {
		return lang
	}

	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return domain.DefaultLanguage
	}
	_, idx, confidence := pageMatcher.Match(tags...)
	if confidence == language.No {
		return domain.DefaultLanguage
	}
	return pageLanguages[idx]
}

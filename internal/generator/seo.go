package generator

import (
	"encoding/json"
	"errors"
	"strings"

	"walink/internal/domain"
)

var errInvalidJSON = errors.New("invalid JSON response from AI")

// seoResponse accepts keywords either as a string or as an array
type seoResponse struct {
	MetaTitle       string          `json:"metaTitle"`
	MetaDescription string          `json:"metaDescription"`
	Keywords        json.RawMessage `json:"keywords"`
	OGTitle         string          `json:"ogTitle"`
	OGDescription   string          `json:"ogDescription"`
	FocusKeyword    string          `json:"focusKeyword"`
}

// ParseSEOData turns a provider reply into SEOData; anything unparseable yields the zero value
func ParseSEOData(raw string) domain.SEOData {
	var resp seoResponse
	if err := unmarshalAIJSON(raw, &resp); err != nil {
		return domain.SEOData{}
	}

	return domain.SEOData{
		MetaTitle:       strings.TrimSpace(resp.MetaTitle),
		MetaDescription: strings.TrimSpace(resp.MetaDescription),
		Keywords:        parseKeywords(resp.Keywords),
		OGTitle:         strings.TrimSpace(resp.OGTitle),
		OGDescription:   strings.TrimSpace(resp.OGDescription),
		FocusKeyword:    strings.TrimSpace(resp.FocusKeyword),
	}
}

func parseKeywords(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		kept := list[:0]
		for _, k := range list {
			if k = strings.TrimSpace(k); k != "" {
				kept = append(kept, k)
			}
		}
		return strings.Join(kept, ", ")
	}
	return ""
}

// unmarshalAIJSON tries the reply as-is, then without code fences, then the outermost {...}
func unmarshalAIJSON(raw string, out any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return errInvalidJSON
}

package i18n

// pageTitles holds the translated document title of each static page.
// Missing entries fall back to the default locale.
var pageTitles = map[Locale]map[string]string{
	"en": {
		"":              "Open Source Avatars",
		"/gallery":      "Gallery",
		"/about":        "About",
		"/resources":    "Resources",
		"/vrminspector": "VRM Inspector",
		"/test":         "Avatar Test",
	},
	"ja": {
		"":           "オープンソースアバター",
		"/gallery":   "ギャラリー",
		"/about":     "概要",
		"/resources": "リソース",
	},
}

// PageTitle returns the title of page in locale l. fallback is true when the
// title came from another locale, which the page shows as a translation banner.
func (s *Set) PageTitle(l Locale, page string) (title string, fallback bool) {
	if t, ok := pageTitles[l][page]; ok {
		return t, false
	}
	if t, ok := pageTitles[s.def][page]; ok {
		return t, l != s.def
	}
	if t, ok := pageTitles["en"][page]; ok {
		return t, true
	}
	return "", true
}

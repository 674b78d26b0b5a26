// Package i18n holds the UI strings shared by the chat service and its
// presentation layer, in Thai and English.
package i18n

import "golang.org/x/text/language"

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.Thai,
}

var matcher = language.NewMatcher(supported)

var translations = map[string]map[string]string{
	"new_chat": {
		"th": "แชทใหม่",
		"en": "New Chat",
	},
	"search_placeholder": {
		"th": "ค้นหาแชท...",
		"en": "Search chats...",
	},
	"your_chats": {
		"th": "แชทของคุณ",
		"en": "Your Chats",
	},
	"delete": {
		"th": "ลบ",
		"en": "Delete",
	},
	"rename": {
		"th": "เปลี่ยนชื่อ",
		"en": "Rename",
	},
	"input_placeholder": {
		"th": "พิมพ์ข้อความของคุณ...",
		"en": "Type your message...",
	},
	"welcome_title": {
		"th": "สวัสดี! มีอะไรให้ช่วยไหม?",
		"en": "Hello! How can I help?",
	},
	"welcome_subtitle": {
		"th": "ถามคำถามเกี่ยวกับ UNAI หรือเริ่มบทสนทนาใหม่ได้เลย",
		"en": "Ask anything about UNAI or start a new conversation.",
	},
	"thinking": {
		"th": "กำลังคิด...",
		"en": "Thinking...",
	},
	"logout": {
		"th": "ออกจากระบบ",
		"en": "Logout",
	},
}

// T returns the translation of key for the given locale ("th" or "en"),
// falling back to English, then to the key itself.
func T(locale, key string) string {
	byLang, ok := translations[key]
	if !ok {
		return key
	}
	if v, ok := byLang[locale]; ok {
		return v
	}
	return byLang["en"]
}

// Match resolves an Accept-Language header (or a bare tag like "th") to a
// supported locale code.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, _ := matcher.Match(tags...)
	base, _ := supported[idx].Base()
	return base.String()
}

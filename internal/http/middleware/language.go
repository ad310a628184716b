package middleware

import (
	"github.com/gofiber/fiber/v2"

	"wallapi/internal/i18n"
)

// LanguageLocalKey stores the negotiated response language.
const LanguageLocalKey = "lang"

// Language negotiates tr/en from the lang query parameter or Accept-Language.
func Language() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := i18n.DetectLanguage(c.Query("lang"))
		if c.Query("lang") == "" {
			lang = i18n.DetectLanguage(c.Get(fiber.HeaderAcceptLanguage))
		}
		c.Locals(LanguageLocalKey, lang)
		c.Set(fiber.HeaderContentLanguage, lang)
		return c.Next()
	}
}

// Lang returns the negotiated language, defaulting to Turkish.
func Lang(c *fiber.Ctx) string {
	if lang, ok := c.Locals(LanguageLocalKey).(string); ok && lang != "" {
		return lang
	}
	return i18n.DetectLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

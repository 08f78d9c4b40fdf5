package compose

import (
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// greetings is the short hello shown when a conversation is empty, keyed
// by interface language.
var greetings = map[string]string{
	"ru": "👋 Привет! Напиши что-нибудь — я на связи.",
	"en": "👋 Hey! Write something — I'm here.",
	"kk": "👋 Сәлем! Бірдеңе жаз — мен осындамын.",
	"ky": "👋 Салам! Бир нерсе жаз — мен бул жактамын.",
	"tr": "👋 Selam! Bir şey yaz — buradayım.",
	"uz": "👋 Salom! Biror narsa yoz — men shu yerdaman.",
	"uk": "👋 Привіт! Напиши щось — я на звʼязку.",
	"de": "👋 Hey! Schreib etwas — ich bin da.",
	"es": "👋 ¡Hola! Escribe algo — aquí estoy.",
	"fr": "👋 Salut ! Écris quelque chose — je suis là.",
}

// errorWord prefixes error turns so a system failure is distinguishable
// from an assistant reply.
var errorWord = map[string]string{
	"ru": "Ошибка",
	"en": "Error",
	"kk": "Қате",
	"ky": "Ката",
	"tr": "Hata",
	"uz": "Xato",
	"uk": "Помилка",
	"de": "Fehler",
	"es": "Error",
	"fr": "Erreur",
}

// noAnswer is shown when the assistant reply is empty after trimming.
var noAnswer = map[string]string{
	"ru": "(нет ответа)",
	"en": "(no answer)",
	"kk": "(жауап жоқ)",
	"ky": "(жооп жок)",
	"tr": "(cevap yok)",
	"uz": "(javob yo'q)",
	"uk": "(немає відповіді)",
	"de": "(keine Antwort)",
	"es": "(sin respuesta)",
	"fr": "(pas de réponse)",
}

// confirmClear is the confirmation question before erasing the history.
var confirmClear = map[string]string{
	"ru": "Вы уверены, что хотите очистить чат?",
	"en": "Are you sure you want to clear the chat?",
	"kk": "Чатты тазалағыңыз келетініне сенімдісіз бе?",
	"ky": "Чатты тазалоону каалайсызбы?",
	"tr": "Sohbeti temizlemek istediğinize emin misiniz?",
	"uz": "Chatni tozalamoqchimisiz?",
	"uk": "Ви впевнені, що хочете очистити чат?",
	"de": "Möchten Sie den Chat wirklich leeren?",
	"es": "¿Seguro que quieres borrar el chat?",
	"fr": "Voulez-vous vraiment effacer la discussion ?",
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC FUNCTIONS

// Greeting returns the localized empty-history greeting.
func Greeting(lang string) string {
	return localized(greetings, lang)
}

// ErrorTurn renders a chat error as a turn body, prefixed with the error
// marker so the user can tell a system failure from a model reply.
func ErrorTurn(lang string, err error) string {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	return "❌ " + localized(errorWord, lang) + ": " + msg
}

// NoAnswer returns the localized placeholder for an empty reply.
func NoAnswer(lang string) string {
	return localized(noAnswer, lang)
}

// ConfirmClear returns the localized clear-history confirmation question.
func ConfirmClear(lang string) string {
	return localized(confirmClear, lang)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func localized(table map[string]string, lang string) string {
	if s, ok := table[lang]; ok {
		return s
	}
	return table[schema.DefaultLanguage]
}

package imagegen

import (
	"errors"

	// Packages
	miniapp "github.com/mutablelogic/go-miniapp"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// failureMessages maps taxonomy codes to user-facing text, keyed by
// interface language.
var failureMessages = map[miniapp.Err]map[string]string{
	miniapp.ErrInsufficientBalance: {
		"ru": "Недостаточно средств. Пополните баланс.",
		"en": "Not enough funds. Top up your balance.",
	},
	miniapp.ErrBlocked: {
		"ru": "Доступ заблокирован. Обратитесь к администратору.",
		"en": "Access blocked. Contact the administrator.",
	},
	miniapp.ErrEmptyPrompt: {
		"ru": "Введите описание для генерации.",
		"en": "Enter a description to generate.",
	},
	miniapp.ErrImageRequired: {
		"ru": "Выберите изображение для этого режима.",
		"en": "Choose an image for this mode.",
	},
	miniapp.ErrGenerationTimeout: {
		"ru": "Таймаут генерации. Попробуйте позже.",
		"en": "Generation timed out. Try again later.",
	},
	miniapp.ErrInvalidCredentials: {
		"ru": "Ошибка сервиса генерации. Сообщите администратору.",
		"en": "Generation service error. Tell the administrator.",
	},
	miniapp.ErrInvalidType: {
		"ru": "Файл должен быть изображением.",
		"en": "The file must be an image.",
	},
	miniapp.ErrTooLarge: {
		"ru": "Изображение слишком большое (до 10 МБ).",
		"en": "The image is too large (10 MB max).",
	},
}

// failureFallback is shown for failures outside the closed taxonomy.
var failureFallback = map[string]string{
	"ru": "Ошибка генерации. Попробуйте ещё раз.",
	"en": "Generation failed. Try again.",
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC FUNCTIONS

// FailureMessage maps a generation failure onto localized user-facing
// text. Languages without a translation fall back to the default
// language.
func FailureMessage(lang string, err error) string {
	var code miniapp.Err
	if !errors.As(err, &code) {
		code = miniapp.ErrGenerationFailed
	}
	table, ok := failureMessages[code]
	if !ok {
		table = failureFallback
	}
	if msg, ok := table[lang]; ok {
		return msg
	}
	return table[schema.DefaultLanguage]
}

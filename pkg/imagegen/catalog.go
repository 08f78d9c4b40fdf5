package imagegen

import (
	"io"
	"os"

	// Packages
	miniapp "github.com/mutablelogic/go-miniapp"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Mode is one entry in the generation mode catalog. Price is in Telegram
// Stars. Strength is the image-to-image strength sent when the mode uses
// an input image; zero means the parameter is omitted.
type Mode struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description" json:"description"`
	Price       uint    `yaml:"price" json:"price"`
	NeedsImage  bool    `yaml:"needs_image" json:"needs_image"`
	Strength    float64 `yaml:"strength,omitempty" json:"strength,omitempty"`
}

// Catalog is the ordered list of generation modes. The first entry is the
// default mode.
type Catalog []Mode

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// DefaultCatalog returns the built-in mode catalog. Prices track the
// upstream generation cost with margin, rounded up to whole Stars.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          "txt2img",
			Title:       "Нарисовать по тексту",
			Description: "Обычная генерация по промпту (быстро и недорого).",
			Price:       4,
		},
		{
			ID:          "edit",
			Title:       "Редактировать картинку",
			Description: "Поменять детали/стиль по твоему описанию (нужна картинка).",
			Price:       8,
			NeedsImage:  true,
			Strength:    0.7,
		},
		{
			ID:          "style",
			Title:       "Перенос стиля",
			Description: "Сделать картинку в выбранном стиле (аниме/арт/кино).",
			Price:       12,
			NeedsImage:  true,
			Strength:    0.8,
		},
		{
			ID:          "bg_remove",
			Title:       "Удалить фон",
			Description: "Автоматически убрать фон и оставить объект (нужна картинка).",
			Price:       6,
			NeedsImage:  true,
			Strength:    0.6,
		},
		{
			ID:          "upscale",
			Title:       "Улучшить качество (4K)",
			Description: "Увеличить разрешение и сделать изображение чётче (нужна картинка).",
			Price:       14,
			NeedsImage:  true,
			Strength:    0.5,
		},
	}
}

// ReadCatalog decodes a YAML mode catalog.
func ReadCatalog(r io.Reader) (Catalog, error) {
	var catalog Catalog
	if err := yaml.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, miniapp.ErrBadParameter.Withf("catalog: %v", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadCatalog reads a YAML mode catalog from a file.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Validate checks that the catalog is non-empty with unique, non-empty
// mode identifiers and non-zero prices.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return miniapp.ErrBadParameter.With("catalog is empty")
	}
	seen := make(map[string]bool, len(c))
	for _, mode := range c {
		if mode.ID == "" {
			return miniapp.ErrBadParameter.With("mode without id")
		}
		if seen[mode.ID] {
			return miniapp.ErrBadParameter.Withf("duplicate mode %q", mode.ID)
		}
		if mode.Price == 0 {
			return miniapp.ErrBadParameter.Withf("mode %q without price", mode.ID)
		}
		seen[mode.ID] = true
	}
	return nil
}

// Lookup returns the mode with the given identifier.
func (c Catalog) Lookup(id string) (Mode, bool) {
	for _, mode := range c {
		if mode.ID == id {
			return mode, true
		}
	}
	return Mode{}, false
}

// Default returns the default mode, the first catalog entry.
func (c Catalog) Default() Mode {
	if len(c) == 0 {
		return Mode{}
	}
	return c[0]
}

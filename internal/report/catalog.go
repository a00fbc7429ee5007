package report

import (
	"embed"
	"log"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Message identifiers
const (
	MsgExportedObjects         = "ExportedObjects"
	MsgImportedTranslations    = "ImportedTranslations"
	MsgImportedSubtitles       = "ImportedSubtitles"
	MsgObjectNotFoundOrNotText = "ObjectNotFoundOrNotText"
	MsgObjectNotText           = "ObjectNotText"
	MsgFontMissing             = "FontMissing"
	MsgCameraMissing           = "CameraMissing"
	MsgActionMissing           = "ActionMissing"
	MsgNodeGroupMissing        = "NodeGroupMissing"
	MsgReadFailed              = "ReadFailed"
	MsgWriteFailed             = "WriteFailed"
	MsgInternalError           = "InternalError"
)

// Catalog renders report messages for one locale, falling back to English
type Catalog struct {
	localizer *i18n.Localizer
}

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
)

func loadBundle() *i18n.Bundle {
	bundleOnce.Do(func() {
		bundle = i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		for _, file := range []string{"active.en.toml", "active.ja.toml"} {
			if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
				log.Printf("report: failed to load %s: %v", file, err)
			}
		}
	})
	return bundle
}

// NewCatalog returns a catalog for locale (e.g. "ja"). Empty or unknown
// locales render English.
func NewCatalog(locale string) *Catalog {
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, language.English.String())
	return &Catalog{localizer: i18n.NewLocalizer(loadBundle(), languages...)}
}

// Message renders the message id with data. Unknown ids render as the id.
func (c *Catalog) Message(id string, data map[string]any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

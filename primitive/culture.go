package primitive

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
)

// Culture holds the formatting rules used by textual conversions.
type Culture struct {
	Tag         language.Tag
	Decimal     rune
	Group       rune
	DateLayouts []string
}

// isoLayouts are accepted by every culture, before any culture specific layout.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Invariant is the culture independent of any language: '.' decimals, ',' groups, ISO dates.
var Invariant = Culture{
	Tag:     language.Und,
	Decimal: '.',
	Group:   ',',
}

var (
	commaDecimal = map[string]bool{
		"de": true, "fr": true, "es": true, "it": true, "pt": true, "nl": true, "ru": true, "pl": true,
		"sv": true, "da": true, "nb": true, "fi": true, "cs": true, "tr": true, "uk": true, "id": true,
	}
	spaceGroup = map[string]bool{
		"fr": true, "ru": true, "pl": true, "sv": true, "nb": true, "fi": true, "cs": true, "uk": true,
	}
	dottedDates = map[string]bool{
		"de": true, "ru": true, "pl": true, "fi": true, "cs": true, "tr": true, "uk": true, "nb": true, "da": true,
	}
)

// CultureFor derives separators and date layouts for a language tag.
func CultureFor(tag language.Tag) Culture {
	if tag == language.Und {
		return Invariant
	}

	base, _ := tag.Base()
	region, _ := tag.Region()
	lang := base.String()

	culture := Culture{Tag: tag, Decimal: '.', Group: ','}

	switch {
	case lang == "de" && region.String() == "CH":
		culture.Decimal, culture.Group = '.', '\''
	case commaDecimal[lang] && spaceGroup[lang]:
		culture.Decimal, culture.Group = ',', ' '
	case commaDecimal[lang]:
		culture.Decimal, culture.Group = ',', '.'
	}

	switch {
	case dottedDates[lang]:
		culture.DateLayouts = []string{"02.01.2006 15:04:05", "02.01.2006", "2.1.2006"}
	case lang == "en" && (region.String() == "US" || region.String() == "ZZ"):
		culture.DateLayouts = []string{"01/02/2006 15:04:05", "01/02/2006", "1/2/2006"}
	case lang == "ja" || lang == "zh" || lang == "ko":
		culture.DateLayouts = []string{"2006/01/02 15:04:05", "2006/01/02"}
	default:
		culture.DateLayouts = []string{"02/01/2006 15:04:05", "02/01/2006", "2/1/2006"}
	}

	return culture
}

// ParseCulture parses a BCP 47 tag such as "de-DE". The empty string and "invariant" give Invariant.
func ParseCulture(name string) (Culture, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "invariant") {
		return Invariant, nil
	}

	tag, err := language.Parse(name)
	if err != nil {
		return Culture{}, err
	}

	return CultureFor(tag), nil
}

// String returns the BCP 47 tag of the culture, "invariant" for Invariant.
func (c Culture) String() string {
	if c.Tag == language.Und {
		return "invariant"
	}

	return c.Tag.String()
}

// Layouts returns the date layouts tried when parsing, ISO layouts first.
func (c Culture) Layouts() []string {
	return append(append([]string{}, isoLayouts...), c.DateLayouts...)
}

var (
	currentOnce    sync.Once
	currentCulture atomic.Pointer[Culture]
)

// CurrentCulture returns the process culture: an explicit SetCurrentCulture value,
// else the culture of LC_ALL, LC_NUMERIC or LANG, else Invariant.
func CurrentCulture() Culture {
	currentOnce.Do(func() {
		if currentCulture.Load() != nil {
			return
		}

		culture := cultureFromEnv()
		currentCulture.CompareAndSwap(nil, &culture)
	})

	return *currentCulture.Load()
}

// SetCurrentCulture overrides the process culture globally.
func SetCurrentCulture(c Culture) {
	currentCulture.Store(&c)
}

func cultureFromEnv() Culture {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}

		// en_US.UTF-8@euro -> en-US
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}

		culture, err := ParseCulture(strings.ReplaceAll(value, "_", "-"))
		if err == nil {
			return culture
		}
	}

	return Invariant
}

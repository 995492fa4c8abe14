package dashboard

import (
	"fmt"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/it"
	ut "github.com/go-playground/universal-translator"
)

const (
	keyHeading   = "heading"
	keyEmpty     = "empty"
	keySeeAll    = "see_all"
	keyPageTitle = "page_title"
	keyFormTitle = "form_title"
	keySubmit    = "submit"
	keyListTitle = "list_title"
	keyTotal     = "total"
)

var catalog = map[string]map[string]string{
	"en": {
		keyHeading: "Expenses",
		keyEmpty:   "No expenses to display.",
		keySeeAll:  "See All →",

		keyPageTitle: "Dashboard",
		keyFormTitle: "Add expense",
		keySubmit:    "Save",
		keyListTitle: "All expenses",
		keyTotal:     "Total",
	},
	"it": {
		keyHeading: "Spese",
		keyEmpty:   "Nessuna spesa da mostrare.",
		keySeeAll:  "Vedi tutte →",

		keyPageTitle: "Cruscotto",
		keyFormTitle: "Aggiungi spesa",
		keySubmit:    "Salva",
		keyListTitle: "Tutte le spese",
		keyTotal:     "Totale",
	},
}

// Labels holds the static text of the card and of the pages around it.
type Labels struct {
	Locale  string
	Heading string
	Empty   string
	SeeAll  string

	PageTitle string
	FormTitle string
	Submit    string
	ListTitle string
	Total     string
}

// SupportedLocales lists the label languages.
func SupportedLocales() []string {
	return []string{"en", "it"}
}

func newUniversalTranslator() (*ut.UniversalTranslator, error) {
	uni := ut.New(en.New(), en.New(), it.New())
	for locale, texts := range catalog {
		trans, found := uni.GetTranslator(locale)
		if !found {
			return nil, fmt.Errorf("translator for %q not registered", locale)
		}
		for key, text := range texts {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("add %s/%s: %w", locale, key, err)
			}
		}
	}
	return uni, nil
}

// LoadLabels resolves the card labels for locale, falling back to English.
func LoadLabels(locale string) (Labels, error) {
	uni, err := newUniversalTranslator()
	if err != nil {
		return Labels{}, err
	}
	trans, _ := uni.GetTranslator(locale)

	l := Labels{Locale: trans.Locale()}
	for key, dst := range map[string]*string{
		keyHeading:   &l.Heading,
		keyEmpty:     &l.Empty,
		keySeeAll:    &l.SeeAll,
		keyPageTitle: &l.PageTitle,
		keyFormTitle: &l.FormTitle,
		keySubmit:    &l.Submit,
		keyListTitle: &l.ListTitle,
		keyTotal:     &l.Total,
	} {
		text, err := trans.T(key)
		if err != nil {
			return Labels{}, fmt.Errorf("translate %s (%s): %w", key, trans.Locale(), err)
		}
		*dst = text
	}
	return l, nil
}

package terminology

import "sort"

// PreferredLocale picks the display name of a concept. The first rule that
// yields a name wins:
//
//  1. names in the parent's default locale
//  2. names in any of the parent's supported locales
//  3. names in the system default locale
//  4. any locale-preferred name
//  5. the most recently created name
//
// Rules 1-3 first consider locale-preferred names, then any name. Within a
// rule the most recently created name wins, ties broken by the higher ID.
func PreferredLocale(names []LocalizedText, parent *Source, systemDefault string) (LocalizedText, bool) {
	if len(names) == 0 {
		return LocalizedText{}, false
	}

	ordered := make([]LocalizedText, len(names))
	copy(ordered, names)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	if parent != nil {
		if parent.DefaultLocale != "" {
			if t, ok := inLocales(ordered, map[string]bool{parent.DefaultLocale: true}); ok {
				return t, true
			}
		}
		if len(parent.SupportedLocales) > 0 {
			set := make(map[string]bool, len(parent.SupportedLocales))
			for _, l := range parent.SupportedLocales {
				set[l] = true
			}
			if t, ok := inLocales(ordered, set); ok {
				return t, true
			}
		}
	}

	if systemDefault == "" {
		systemDefault = DefaultLocale
	}
	if t, ok := inLocales(ordered, map[string]bool{systemDefault: true}); ok {
		return t, true
	}

	if t, ok := first(ordered, func(t LocalizedText) bool { return t.LocalePreferred }); ok {
		return t, true
	}

	return ordered[0], true
}

func inLocales(ordered []LocalizedText, locales map[string]bool) (LocalizedText, bool) {
	if t, ok := first(ordered, func(t LocalizedText) bool { return locales[t.Locale] && t.LocalePreferred }); ok {
		return t, true
	}
	return first(ordered, func(t LocalizedText) bool { return locales[t.Locale] })
}

func first(ordered []LocalizedText, match func(LocalizedText) bool) (LocalizedText, bool) {
	for _, t := range ordered {
		if match(t) {
			return t, true
		}
	}
	return LocalizedText{}, false
}

package domain

import "strings"

// TargetLanguageKey is reserved in translation tables: its value names the target
// language rather than a translation.
const TargetLanguageKey = "target_lang"

// Texts returns every translatable string in traversal order: the board-set
// description, then for each page its name followed by each button's label,
// message (when it differs from the label) and action text (when it differs from both).
// Duplicates across buttons are kept.
func (t *Tree) Texts() []string {
	var texts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	add(t.Description)
	for _, page := range t.OrderedPages() {
		add(page.Name)
		for _, b := range page.Buttons {
			if !b.HasSyntheticLabel() {
				add(b.Label)
			}
			msg := strings.TrimSpace(b.Message)
			if msg != strings.TrimSpace(b.Label) {
				add(msg)
			}
			if b.Action != nil && b.Action.Text != "" {
				at := strings.TrimSpace(b.Action.Text)
				if at != msg && at != strings.TrimSpace(b.Label) {
					add(at)
				}
			}
		}
	}
	return texts
}

// Translate replaces, in place, every string found as a key of table wherever it
// appears (description, page names, labels, messages, action texts). Keys are
// matched against whitespace-trimmed values. It returns the number of replacements.
func (t *Tree) Translate(table map[string]string) int {
	if len(table) == 0 {
		return 0
	}
	n := 0
	swap := func(s *string) {
		key := strings.TrimSpace(*s)
		if key == "" || key == TargetLanguageKey {
			return
		}
		if v, ok := table[key]; ok {
			*s = v
			n++
		}
	}
	swap(&t.Description)
	for _, page := range t.OrderedPages() {
		swap(&page.Name)
		for _, b := range page.Buttons {
			if b.HasSyntheticLabel() {
				if strings.TrimSpace(b.Message) != strings.TrimSpace(b.Label) {
					swap(&b.Message)
				}
			} else {
				swap(&b.Label)
				swap(&b.Message)
			}
			if b.Action != nil {
				swap(&b.Action.Text)
				if b.Action.Fallback != nil {
					swap(&b.Action.Fallback.Text)
				}
			}
		}
	}
	return n
}

// TargetLanguage returns the reserved target language entry of a translation table.
func TargetLanguage(table map[string]string) (string, bool) {
	lang, ok := table[TargetLanguageKey]
	return lang, ok && lang != ""
}

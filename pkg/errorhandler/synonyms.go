package errorhandler

import "strings"

// SynonymMapper resolves a missing schema field to an available one via a
// direct match, a known synonym group, or a substring fuzzy fallback.
type SynonymMapper struct {
	synonyms map[string][]string
	reverse  map[string]string
}

// NewSynonymMapper builds a mapper seeded with the default field synonym
// groups.
func NewSynonymMapper() *SynonymMapper {
	m := &SynonymMapper{synonyms: make(map[string][]string, len(fieldSynonyms))}
	for base, syns := range fieldSynonyms {
		m.synonyms[base] = append([]string(nil), syns...)
	}
	m.rebuildReverse()
	return m
}

func (m *SynonymMapper) rebuildReverse() {
	m.reverse = make(map[string]string)
	for base, syns := range m.synonyms {
		for _, syn := range syns {
			m.reverse[syn] = base
		}
		m.reverse[base] = base
	}
}

// AddSynonymGroup registers (or replaces) a synonym group for base.
func (m *SynonymMapper) AddSynonymGroup(base string, synonyms []string) {
	m.synonyms[base] = append([]string(nil), synonyms...)
	m.rebuildReverse()
}

// FindMapping looks for an available field that corresponds to
// missingField, trying a direct case-insensitive match, then the synonym
// group's base term and its siblings, then a substring-containment fuzzy
// fallback. Returns the {missingField: resolved} mapping and whether one
// was found.
func (m *SynonymMapper) FindMapping(missingField string, available []string) (map[string]string, bool) {
	missingLower := strings.ToLower(missingField)

	availableLower := make(map[string]string, len(available))
	for _, f := range available {
		availableLower[strings.ToLower(f)] = f
	}

	if resolved, ok := availableLower[missingLower]; ok {
		return map[string]string{missingField: resolved}, true
	}

	if base, ok := m.reverse[missingLower]; ok {
		candidates := append([]string{base}, m.synonyms[base]...)
		for _, candidate := range candidates {
			if resolved, ok := availableLower[strings.ToLower(candidate)]; ok {
				return map[string]string{missingField: resolved}, true
			}
		}
	}

	for _, field := range available {
		fieldLower := strings.ToLower(field)
		if strings.Contains(fieldLower, missingLower) || strings.Contains(missingLower, fieldLower) {
			return map[string]string{missingField: field}, true
		}
	}

	return nil, false
}

package specialty

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// SynonymTable maps a canonical specialty term to the spellings independent
// survey publishers use for it. The table is fixed at construction; a YAML
// file can extend or override entries.
type SynonymTable map[string][]string

// DefaultSynonyms returns the built-in specialty synonym dictionary.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"anesthesiology":    {"anesthesia"},
		"cardiology":        {"cardiovascular", "cardiovascular disease", "heart"},
		"critical care":     {"intensivist", "intensive care", "icu"},
		"dermatology":       {"derm"},
		"emergency":         {"emergency medicine", "emergency room"},
		"endocrinology":     {"endocrine", "diabetes"},
		"family medicine":   {"family practice", "general practice"},
		"gastroenterology":  {"gastro", "digestive"},
		"hematology":        {"heme"},
		"hospitalist":       {"hospital medicine"},
		"internal medicine": {"general internal medicine"},
		"nephrology":        {"renal", "kidney"},
		"neurology":         {"neuro"},
		"obstetrics":        {"obgyn", "gynecology", "women's health"},
		"oncology":          {"cancer", "medical oncology"},
		"ophthalmology":     {"eye"},
		"orthopedics":       {"orthopaedics", "orthopedic surgery", "orthopaedic surgery"},
		"otolaryngology":    {"ent", "ear nose and throat", "head and neck"},
		"pediatrics":        {"paediatrics", "peds"},
		"psychiatry":        {"behavioral health", "mental health"},
		"pulmonology":       {"pulmonary", "pulmonary disease", "lung"},
		"radiology":         {"imaging", "diagnostic radiology"},
		"rheumatology":      {"rheum"},
		"urology":           {"urologic surgery"},
	}
}

// LoadSynonyms reads a YAML synonym file and merges it over the defaults.
// File entries replace same-keyed default entries.
func LoadSynonyms(path string) (SynonymTable, error) {
	table := DefaultSynonyms()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonym file: %w", err)
	}
	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse synonym file: %w", err)
	}
	for k, v := range overrides {
		table[NormalizeName(k)] = v
	}
	return table, nil
}

// terms returns the canonical key plus its synonyms, normalized.
func (t SynonymTable) terms(key string) []string {
	out := make([]string, 0, len(t[key])+1)
	out = append(out, NormalizeName(key))
	for _, s := range t[key] {
		out = append(out, NormalizeName(s))
	}
	return out
}

// keys returns table keys in sorted order for deterministic iteration.
func (t SynonymTable) keys() []string {
	ks := make([]string, 0, len(t))
	for k := range t {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

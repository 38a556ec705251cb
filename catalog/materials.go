package catalog

import (
	"regexp"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/reference"
)

var percentToken = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*%`)

// ScanMaterials finds every "<n>%" in text and matches the words after it
// against the material table. Names are de-duplicated in first-seen order and
// joined with ";".
func ScanMaterials(text string, table reference.MaterialTable) string {
	var names []string
	seen := make(map[string]struct{})
	for _, loc := range percentToken.FindAllStringIndex(text, -1) {
		name, ok := table.Match(text[loc[1]:])
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return strings.Join(names, ";")
}

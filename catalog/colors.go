package catalog

import (
	"regexp"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/models"
	"github.com/raushankrgupta/resale-catalog-parser/reference"
)

var hexCode = regexp.MustCompile(`^#?([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)

// ResolveColor maps a source label to its canonical name and hex code.
// Unknown labels become the multicolor sentinel. The order of the table and
// source hex codes follows mode; white is the last fallback.
func ResolveColor(table reference.ColorTable, label, sourceHex string, mode HexMode) (name, hex string, known bool) {
	entry, known := table.Lookup(label)
	name = models.MulticolorName
	if known {
		name = entry.Name
	}

	candidates := []string{entry.HexCode, sourceHex}
	if mode == HexFromPage {
		candidates = []string{sourceHex, entry.HexCode}
	}
	for _, candidate := range candidates {
		if h, ok := normalizeHex(candidate); ok {
			return name, h, known
		}
	}
	return name, models.DefaultHexCode, known
}

func normalizeHex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !hexCode.MatchString(s) {
		return "", false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return s, true
}

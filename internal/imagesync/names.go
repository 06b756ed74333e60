package imagesync

import (
	"path"
	"regexp"
	"strings"
)

var (
	trailingCounter = regexp.MustCompile(`\s+\d+$`)
	spaces          = regexp.MustCompile(`\s+`)
)

// arabicNames maps canonical (English, lowercased) file names to menu names.
var arabicNames = map[string]string{
	"kibbeh fried":           "كبة مقلية",
	"kibbeh grilled":         "كبة مشوية",
	"raqayeq cheese":         "رقايق جبنة",
	"raqayeq cheese sausage": "رقايق جبنة وسجق",
	"sambousa meat":          "سمبوسك لحمة",
	"sambousa cheese":        "سمبوسك جبنة",
	"shishbarak":             "ششبرك لحمة",
	"grape leaves meat":      "ورق عنب بلحمة",
	"grape leaves oil":       "ورق عنب بزيت",
	"appetizers":             "مقبلات",
	"main dishes":            "أطباق رئيسية",
	"desserts":               "حلويات",
}

// DeriveName turns a file name into its canonical display name:
// "kibbeh_fried-1712345678.png" -> "kibbeh fried".
func DeriveName(fileName string) string {
	name := strings.TrimSuffix(fileName, path.Ext(fileName))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(spaces.ReplaceAllString(name, " "))
	// Drop at most one trailing counter, but never the whole name.
	if stripped := trailingCounter.ReplaceAllString(name, ""); stripped != "" {
		name = stripped
	}
	return name
}

// Translate returns the Arabic menu name for a canonical name, or the name
// unchanged when no translation is known.
func Translate(name string) string {
	if ar, ok := arabicNames[strings.ToLower(name)]; ok {
		return ar
	}
	return name
}

type kind int

const (
	kindProduct kind = iota
	kindCategory
	kindLocation
)

func (k kind) String() string {
	switch k {
	case kindCategory:
		return "category"
	case kindLocation:
		return "location"
	default:
		return "product"
	}
}

// classify picks the row type from the file's folder segments. Anything that
// is neither a category nor a location folder becomes a product.
func classify(folder string) kind {
	for _, seg := range strings.Split(strings.ToLower(folder), "/") {
		switch seg {
		case "categories":
			return kindCategory
		case "locations", "delivery":
			return kindLocation
		}
	}
	return kindProduct
}

package lookup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical month names, spelled the way the ACJU calendar spells them
const (
	Muharram         = "Muharram"
	Safar            = "Safar"
	RabiulAwwal      = "Rabi'ul Awwal"
	RabiuthThaani    = "Rabee`unith Thaani"
	JumaadalOola     = "Jumaadal Oola"
	JumaadalAakhirah = "Jumaadal Aakhirah"
	Rajab            = "Rajab"
	Shabaan          = "Sha'baan"
	Ramadaan         = "Ramadaan"
	Shawwaal         = "Shawwaal"
	DhulQadah        = "Dhul Qa'dah"
	DhulHijjah       = "Dhul Hijjah"
)

// Months lists the canonical names in calendar order
var Months = []string{
	Muharram, Safar, RabiulAwwal, RabiuthThaani, JumaadalOola, JumaadalAakhirah,
	Rajab, Shabaan, Ramadaan, Shawwaal, DhulQadah, DhulHijjah,
}

var arabicNames = map[string]string{
	Muharram:         "المحرم",
	Safar:            "صفر",
	RabiulAwwal:      "ربيع الأول",
	RabiuthThaani:    "ربيع الثاني",
	JumaadalOola:     "جمادى الأولى",
	JumaadalAakhirah: "جمادى الآخرة",
	Rajab:            "رجب",
	Shabaan:          "شعبان",
	Ramadaan:         "رمضان",
	Shawwaal:         "شوال",
	DhulQadah:        "ذو القعدة",
	DhulHijjah:       "ذو الحجة",
}

// spellings seen on the calendar page across its versions and in common use
var spellings = map[string][]string{
	Muharram:         {"Muharram al-Haram", "Moharram"},
	Safar:            {"Safar al-Muzaffar"},
	RabiulAwwal:      {"Rabeeul Awwal", "Rabi al-Awwal", "Rabiul Awwal", "Rabi ul Awwal", "Rabi I"},
	RabiuthThaani:    {"Rabee'unith Thaani", "Rabiuth Thaani", "Rabi al-Thani", "Rabi ul Thani", "Rabi'ul Aakhir", "Rabi al-Akhir", "Rabi II"},
	JumaadalOola:     {"Jumada al-Ula", "Jumada al-Awwal", "Jumadal Ula", "Jumaadal Ula", "Jumada I"},
	JumaadalAakhirah: {"Jumada al-Akhirah", "Jumada al-Thani", "Jumadal Akhira", "Jumaadal Aakhira", "Jumada II"},
	Rajab:            {"Rajab al-Murajjab"},
	Shabaan:          {"Shabaan", "Sha'ban", "Shaban", "Shaʿbān"},
	Ramadaan:         {"Ramadan", "Ramadhan", "Ramzan", "Ramaḍān"},
	Shawwaal:         {"Shawwal", "Shawal"},
	DhulQadah:        {"Dhul Qadah", "Dhu al-Qadah", "Dhul Qaadah", "Dhu al-Qi'dah", "Zul Qadah"},
	DhulHijjah:       {"Dhu al-Hijjah", "Dhul Hijja", "Zul Hijjah"},
}

var aliases = buildAliases()

func buildAliases() map[string]string {
	m := make(map[string]string)
	for _, canonical := range Months {
		m[foldName(canonical)] = canonical
		for _, s := range spellings[canonical] {
			m[foldName(s)] = canonical
		}
	}
	return m
}

// foldName reduces a month name to a comparison key: no case, no diacritics,
// no apostrophes and single spaces
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	folded = strings.Map(func(r rune) rune {
		switch r {
		case '\'', '`', 'ʿ', 'ʾ', '’', '‘':
			return -1
		case '-', '_':
			return ' '
		}
		return unicode.ToLower(r)
	}, folded)

	return strings.Join(strings.Fields(folded), " ")
}

// Canonical returns the canonical spelling of a month name.
// Names that are not recognized are returned unchanged.
func Canonical(name string) string {
	if canonical, ok := aliases[foldName(name)]; ok {
		return canonical
	}
	return name
}

// IsKnown reports whether name is a recognized spelling of a Hijri month
func IsKnown(name string) bool {
	_, ok := aliases[foldName(name)]
	return ok
}

// Arabic returns the Arabic rendering of a month name.
// Months that are not recognized are returned in their original spelling.
func Arabic(name string) string {
	if arabic, ok := arabicNames[Canonical(name)]; ok {
		return arabic
	}
	return name
}

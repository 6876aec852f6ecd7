package domain

// Competitive regions for the nationalities that appear in the player pool.
// Used when a close nationality verdict narrows candidates to the guessed
// country's region.
var countryRegions = map[string]string{
	"AR": "Americas",
	"AU": "Oceania",
	"BA": "Europe",
	"BE": "Europe",
	"BG": "Europe",
	"BR": "Americas",
	"CA": "Americas",
	"CH": "Europe",
	"CL": "Americas",
	"CN": "Asia",
	"CZ": "Europe",
	"DE": "Europe",
	"DK": "Europe",
	"EE": "Europe",
	"ES": "Europe",
	"FI": "Europe",
	"FR": "Europe",
	"GB": "Europe",
	"HU": "Europe",
	"ID": "Asia",
	"IL": "Europe",
	"JO": "Asia",
	"KZ": "CIS",
	"LT": "Europe",
	"LV": "Europe",
	"MK": "Europe",
	"MN": "Asia",
	"MY": "Asia",
	"NL": "Europe",
	"NO": "Europe",
	"NZ": "Oceania",
	"PL": "Europe",
	"PT": "Europe",
	"RO": "Europe",
	"RS": "Europe",
	"RU": "CIS",
	"SE": "Europe",
	"SK": "Europe",
	"TR": "Europe",
	"UA": "CIS",
	"US": "Americas",
	"UZ": "CIS",
	"VN": "Asia",
	"ZA": "Africa",
}

// Region returns the competitive region for a country code, or "" when the
// country is unknown.
func Region(countryCode string) string {
	return countryRegions[countryCode]
}

package job

import "strings"

// UnknownLocation is the fallback when a posting carries no resolvable
// location. Normalization never fails on location alone.
const UnknownLocation = "Unknown"

// RemoteLocation marks fully remote postings in the city/country fields.
const RemoteLocation = "Remote"

// cityCountries resolves a lowercased city token to its canonical city and
// country names.
var cityCountries = map[string][2]string{
	"london":        {"London", "United Kingdom"},
	"manchester":    {"Manchester", "United Kingdom"},
	"edinburgh":     {"Edinburgh", "United Kingdom"},
	"paris":         {"Paris", "France"},
	"lyon":          {"Lyon", "France"},
	"berlin":        {"Berlin", "Germany"},
	"munich":        {"Munich", "Germany"},
	"münchen":       {"Munich", "Germany"},
	"hamburg":       {"Hamburg", "Germany"},
	"frankfurt":     {"Frankfurt", "Germany"},
	"amsterdam":     {"Amsterdam", "Netherlands"},
	"rotterdam":     {"Rotterdam", "Netherlands"},
	"madrid":        {"Madrid", "Spain"},
	"barcelona":     {"Barcelona", "Spain"},
	"milan":         {"Milan", "Italy"},
	"milano":        {"Milan", "Italy"},
	"rome":          {"Rome", "Italy"},
	"dublin":        {"Dublin", "Ireland"},
	"lisbon":        {"Lisbon", "Portugal"},
	"zurich":        {"Zurich", "Switzerland"},
	"zürich":        {"Zurich", "Switzerland"},
	"geneva":        {"Geneva", "Switzerland"},
	"stockholm":     {"Stockholm", "Sweden"},
	"copenhagen":    {"Copenhagen", "Denmark"},
	"oslo":          {"Oslo", "Norway"},
	"helsinki":      {"Helsinki", "Finland"},
	"warsaw":        {"Warsaw", "Poland"},
	"krakow":        {"Krakow", "Poland"},
	"prague":        {"Prague", "Czech Republic"},
	"vienna":        {"Vienna", "Austria"},
	"brussels":      {"Brussels", "Belgium"},
	"new york":      {"New York", "United States"},
	"san francisco": {"San Francisco", "United States"},
	"seattle":       {"Seattle", "United States"},
	"boston":        {"Boston", "United States"},
	"austin":        {"Austin", "United States"},
	"chicago":       {"Chicago", "United States"},
	"toronto":       {"Toronto", "Canada"},
	"vancouver":     {"Vancouver", "Canada"},
	"sydney":        {"Sydney", "Australia"},
	"melbourne":     {"Melbourne", "Australia"},
	"singapore":     {"Singapore", "Singapore"},
	"tokyo":         {"Tokyo", "Japan"},
	"dubai":         {"Dubai", "United Arab Emirates"},
}

// countryAliases maps common country tokens and codes to canonical names.
var countryAliases = map[string]string{
	"uk":             "United Kingdom",
	"gb":             "United Kingdom",
	"united kingdom": "United Kingdom",
	"england":        "United Kingdom",
	"us":             "United States",
	"usa":            "United States",
	"united states":  "United States",
	"fr":             "France",
	"france":         "France",
	"de":             "Germany",
	"germany":        "Germany",
	"deutschland":    "Germany",
	"nl":             "Netherlands",
	"netherlands":    "Netherlands",
	"es":             "Spain",
	"spain":          "Spain",
	"it":             "Italy",
	"italy":          "Italy",
	"ie":             "Ireland",
	"ireland":        "Ireland",
	"ch":             "Switzerland",
	"switzerland":    "Switzerland",
	"se":             "Sweden",
	"sweden":         "Sweden",
	"pl":             "Poland",
	"poland":         "Poland",
	"at":             "Austria",
	"austria":        "Austria",
	"be":             "Belgium",
	"belgium":        "Belgium",
	"pt":             "Portugal",
	"portugal":       "Portugal",
	"ca":             "Canada",
	"canada":         "Canada",
	"au":             "Australia",
	"australia":      "Australia",
	"jp":             "Japan",
	"japan":          "Japan",
	"sg":             "Singapore",
	"singapore":      "Singapore",
}

// SplitLocation resolves a free-text location into city and country. It
// never fails: unresolvable input yields the raw first segment as city with
// an Unknown country, and an empty or "remote" input yields Remote/Unknown
// markers.
func SplitLocation(raw string) (city, country string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownLocation, UnknownLocation
	}

	lower := strings.ToLower(raw)
	if strings.Contains(lower, "remote") || strings.Contains(lower, "anywhere") {
		return RemoteLocation, RemoteLocation
	}

	segments := strings.Split(raw, ",")
	first := collapseWhitespace(strings.ToLower(segments[0]))

	if entry, ok := cityCountries[first]; ok {
		return entry[0], entry[1]
	}

	city = strings.TrimSpace(segments[0])
	country = UnknownLocation
	for _, seg := range segments[1:] {
		token := collapseWhitespace(strings.ToLower(seg))
		if name, ok := countryAliases[token]; ok {
			country = name
			break
		}
	}
	return city, country
}

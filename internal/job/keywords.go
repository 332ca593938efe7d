package job

import "strings"

// The classifier is a data-driven table of (language, label) keyword sets
// matched against title+description text. Adding a language or category is
// a table edit, not a code change.

type keywordRule struct {
	Language string
	Label    string
	Keywords []string
}

var categoryRules = []keywordRule{
	{"en", "software-engineering", []string{"software engineer", "developer", "backend", "frontend", "full stack", "fullstack", "devops", "sre", "programmer"}},
	{"en", "data", []string{"data analyst", "data scientist", "data engineer", "analytics", "machine learning", "business intelligence"}},
	{"en", "product", []string{"product manager", "product owner", "product analyst"}},
	{"en", "design", []string{"designer", "ux", "ui design", "graphic design"}},
	{"en", "marketing", []string{"marketing", "seo", "content strategist", "social media", "growth"}},
	{"en", "sales", []string{"sales", "account executive", "business development", "account manager"}},
	{"en", "finance", []string{"finance", "financial analyst", "accountant", "audit", "controller", "treasury"}},
	{"en", "consulting", []string{"consultant", "consulting", "advisory", "strategy analyst"}},
	{"en", "business", []string{"analyst", "business analyst", "business associate"}},
	{"en", "operations", []string{"operations", "supply chain", "logistics", "project coordinator"}},
	{"en", "hr", []string{"human resources", "recruiter", "talent acquisition", "people operations"}},
	{"en", "legal", []string{"legal counsel", "paralegal", "lawyer", "compliance officer"}},
	{"fr", "software-engineering", []string{"développeur", "ingénieur logiciel", "ingénieur développement"}},
	{"fr", "data", []string{"analyste de données", "ingénieur données", "scientifique des données"}},
	{"fr", "marketing", []string{"chargé de marketing", "responsable marketing"}},
	{"fr", "finance", []string{"analyste financier", "comptable", "contrôleur de gestion"}},
	{"de", "software-engineering", []string{"softwareentwickler", "entwickler", "informatiker"}},
	{"de", "data", []string{"datenanalyst", "dateningenieur"}},
	{"de", "finance", []string{"finanzanalyst", "buchhalter"}},
	{"es", "software-engineering", []string{"desarrollador", "ingeniero de software", "programador"}},
	{"es", "data", []string{"analista de datos", "científico de datos"}},
	{"es", "finance", []string{"analista financiero", "contador"}},
}

var seniorityRules = []keywordRule{
	{"en", "internship", []string{"intern", "internship", "placement year", "summer analyst"}},
	{"en", "graduate", []string{"graduate", "grad scheme", "new grad", "entry level", "entry-level", "trainee"}},
	{"en", "early-career", []string{"junior", "early career", "associate", "1-2 years", "0-2 years"}},
	{"fr", "internship", []string{"stage", "stagiaire", "alternance"}},
	{"fr", "graduate", []string{"jeune diplômé", "débutant"}},
	{"de", "internship", []string{"praktikum", "praktikant", "werkstudent"}},
	{"de", "graduate", []string{"absolvent", "berufseinsteiger"}},
	{"es", "internship", []string{"pasantía", "prácticas", "becario"}},
	{"es", "graduate", []string{"recién graduado", "sin experiencia"}},
}

var workModeRules = []keywordRule{
	{"en", string(WorkModeRemote), []string{"remote", "work from home", "work from anywhere", "fully distributed"}},
	{"en", string(WorkModeHybrid), []string{"hybrid"}},
	{"fr", string(WorkModeRemote), []string{"télétravail"}},
	{"fr", string(WorkModeHybrid), []string{"hybride"}},
	{"de", string(WorkModeRemote), []string{"homeoffice", "home office"}},
	{"es", string(WorkModeRemote), []string{"teletrabajo", "trabajo remoto"}},
	{"es", string(WorkModeHybrid), []string{"híbrido"}},
}

var languageRules = []keywordRule{
	{"en", "en", []string{"english", "fluent english", "anglais", "englisch", "inglés"}},
	{"fr", "fr", []string{"french", "français", "francés", "französisch"}},
	{"de", "de", []string{"german", "deutsch", "allemand", "alemán"}},
	{"es", "es", []string{"spanish", "español", "espagnol", "spanisch"}},
	{"nl", "nl", []string{"dutch", "nederlands", "néerlandais"}},
	{"it", "it", []string{"italian", "italiano", "italien"}},
}

// Classification is the derived label set for one posting.
type Classification struct {
	Categories []string
	Seniority  []string
	WorkMode   WorkMode
	Languages  []string
}

// Classify matches the combined title+description text against the keyword
// tables. Pure function: same text, same labels.
func Classify(title, description string) Classification {
	text := strings.ToLower(title + " " + description)

	c := Classification{
		Categories: matchLabels(text, categoryRules),
		Seniority:  matchLabels(text, seniorityRules),
		Languages:  matchLabels(text, languageRules),
		WorkMode:   WorkModeOnSite,
	}

	// Remote wins over hybrid when both appear; on-site is the default.
	modes := matchLabels(text, workModeRules)
	for _, m := range modes {
		if m == string(WorkModeRemote) {
			c.WorkMode = WorkModeRemote
			return c
		}
	}
	if len(modes) > 0 {
		c.WorkMode = WorkMode(modes[0])
	}
	return c
}

func matchLabels(text string, rules []keywordRule) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, rule := range rules {
		if seen[rule.Label] {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				labels = append(labels, rule.Label)
				seen[rule.Label] = true
				break
			}
		}
	}
	return labels
}

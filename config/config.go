package config

// Curated reference data for crisis detection and helpline routing. The
// detector and the escalation service receive these by injection; nothing in
// this package is mutated after startup.

// CrisisKeywords is matched as case-insensitive substrings against every chat
// message. The list mixes English, Hindi script and Hinglish because users
// switch scripts mid-sentence.
var CrisisKeywords = []string{
	// English
	"suicide", "self-harm", "ending life", "can't go on", "kill myself", "want to die",
	"no reason to live", "better off dead", "end it all", "suicidal thoughts",
	"cutting myself", "overdose", "jump off", "hang myself", "drown myself",
	"hurt myself", "self injury", "self destructive",

	// Hindi
	"आत्महत्या", "आत्म-हानि", "जीवन समाप्त करना", "नहीं जा सकता",
	"खुद को मारना", "मर जाना चाहता", "जीना नहीं चाहता", "सब खत्म कर दूं",
	"कोई वजह नहीं", "मरना बेहतर", "सब खत्म", "आत्मघाती विचार",
	"खुद को काटना", "दवा ज्यादा खाना", "कूद जाना", "फांसी लगाना",
	"डूब जाना", "खुद को चोट पहुंचाना", "आत्म विनाशी",

	// Hinglish
	"suicide karna", "self harm karna", "marna chahta", "end karna",
	"life khatam", "jaan dena", "khatam karna", "suicidal feel kar raha",
	"cut karna", "overdose karna", "jump karna", "hang karna",
	"drown karna", "hurt karna", "self injury karna",

	// Broader distress indicators
	"hopeless", "worthless", "no future", "give up", "tired of living",
	"pain too much", "suffering too much", "depression severe",
	"anxiety attack", "panic attack severe", "mental breakdown",
	"निराशा", "बेकार", "कोई भविष्य नहीं", "हार मानना", "जीने से थक गया",
	"दर्द बहुत",
}

// Helplines maps a routing target name to its published contact string.
var Helplines = map[string]string{
	"national":         "+91-9152987821 (COOJ)",
	"vandrevala":       "9999666555",
	"sneha":            "044-24640050",
	"student_helpline": "1800-599-0019 (KIRAN)",
	"women_helpline":   "181",
}

// RegionHelplines maps a lower-case city/region substring to the helpline
// target used when the user reported that location. Checked in declaration
// order; keyword-based overrides in the escalation service run after this.
var RegionHelplines = []struct {
	Match  string
	Target string
}{
	{"delhi", "vandrevala"},
	{"ncr", "vandrevala"},
	{"mumbai", "national"},
	{"maharashtra", "national"},
	{"chennai", "sneha"},
	{"tamil", "sneha"},
}

// SupportedLanguages maps language codes accepted by the chat surface to
// their display names.
var SupportedLanguages = map[string]string{
	"en":       "English",
	"hi":       "Hindi",
	"bn":       "Bengali",
	"ta":       "Tamil",
	"te":       "Telugu",
	"mr":       "Marathi",
	"hinglish": "Hinglish",
}

// DefaultLanguage is used when detection is inconclusive.
const DefaultLanguage = "en"

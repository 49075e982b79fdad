package dialogue

import (
	"regexp"
	"strings"
)

// Intent is the classification of one user message.
type Intent int

const (
	IntentPlain Intent = iota
	IntentItinerary
	IntentExport
	IntentAffirmative
)

func (i Intent) String() string {
	switch i {
	case IntentItinerary:
		return "itinerary_request"
	case IntentExport:
		return "export_request"
	case IntentAffirmative:
		return "affirmative_export_answer"
	default:
		return "plain_answer"
	}
}

// Vocabulary holds the phrases that mark each intent. Phrases match on word
// boundaries, case-insensitively.
type Vocabulary struct {
	Export      []string
	Itinerary   []string
	Affirmation []string
	// Decline overrides Affirmation: "no thanks, ok" is not a yes.
	Decline []string
}

// DefaultVocabulary is used when an engine is created without one.
var DefaultVocabulary = Vocabulary{
	Export: []string{
		"export", "download", "pdf", "save it", "save my itinerary", "print",
	},
	Itinerary: []string{
		"itinerary", "full plan", "trip plan", "travel plan", "make a plan",
		"create a plan", "plan my trip", "plan the trip", "day by day", "day-by-day",
		"full schedule", "daily schedule", "make the schedule", "make a schedule",
	},
	Affirmation: []string{
		"yes", "yeah", "yep", "sure", "ok", "okay", "definitely",
		"of course", "absolutely", "do it", "go ahead",
	},
	Decline: []string{
		"no", "nope", "nah", "not now", "not yet", "no thanks", "don't", "do not",
		"skip", "maybe later", "later",
	},
}

// Classifier maps user text to an Intent.
type Classifier struct {
	export      *regexp.Regexp
	itinerary   *regexp.Regexp
	affirmation *regexp.Regexp
	decline     *regexp.Regexp
}

// NewClassifier compiles a vocabulary into a Classifier.
func NewClassifier(v Vocabulary) *Classifier {
	return &Classifier{
		export:      phraseRegexp(v.Export),
		itinerary:   phraseRegexp(v.Itinerary),
		affirmation: phraseRegexp(v.Affirmation),
		decline:     phraseRegexp(v.Decline),
	}
}

func phraseRegexp(phrases []string) *regexp.Regexp {
	if len(phrases) == 0 {
		return nil
	}
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(strings.ToLower(p)), " ", `\s+`)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func matches(re *regexp.Regexp, s string) bool {
	return re != nil && re.MatchString(s)
}

// Classify returns the intent of text. afterExportPrompt reports whether the
// most recent assistant turn asked to export; affirmations only count then,
// and never when the reply also declines. Export wins over itinerary, so
// "export my itinerary" is an export request.
func (c *Classifier) Classify(text string, afterExportPrompt bool) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case matches(c.export, t):
		return IntentExport
	case afterExportPrompt && matches(c.affirmation, t) && !matches(c.decline, t):
		return IntentAffirmative
	case matches(c.itinerary, t):
		return IntentItinerary
	default:
		return IntentPlain
	}
}

package retrieval

// TermClassifier decides which tokens carry signal. The static two-set
// lookup below fits math textbooks; a subject-specific vocabulary can
// be injected without touching tokenization.
type TermClassifier interface {
	IsStopWord(token string) bool
	IsDomainTerm(token string) bool
}

// MathClassifier is the default classifier: a generic English stop-word
// set with an allow-list of quantitative terms that survive even when
// the stop-word list would drop them.
type MathClassifier struct{}

func (MathClassifier) IsStopWord(token string) bool { return stopWords[token] }
func (MathClassifier) IsDomainTerm(token string) bool { return mathTerms[token] }

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "but": true, "by": true, "can": true,
	"could": true, "did": true, "do": true, "does": true, "for": true,
	"from": true, "had": true, "has": true, "have": true, "he": true,
	"her": true, "his": true, "how": true, "if": true, "in": true,
	"is": true, "it": true, "its": true, "me": true, "my": true,
	"no": true, "not": true, "of": true, "on": true, "or": true,
	"our": true, "she": true, "so": true, "some": true, "than": true,
	"that": true, "the": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "to": true,
	"up": true, "us": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "will": true, "with": true, "would": true, "you": true,
	"your": true,
}

var mathTerms = map[string]bool{
	"add": true, "sum": true, "subtract": true, "difference": true,
	"addition": true, "subtraction": true, "multiplication": true,
	"division": true, "multiply": true, "product": true, "divide": true,
	"quotient": true,
	"fraction": true, "decimal": true, "percent": true, "ratio": true,
	"equation": true, "variable": true, "solve": true, "graph": true,
	"angle": true, "area": true, "perimeter": true, "volume": true,
	"mean": true, "median": true, "mode": true, "range": true,
	"prime": true, "factor": true, "multiple": true, "digit": true,
	"numerator": true, "denominator": true, "integer": true,
	"exponent": true, "square": true, "root": true, "slope": true,
	"count": true, "measure": true, "unit": true, "plot": true,
	"even": true, "odd": true, "plus": true, "minus": true, "times": true,
}

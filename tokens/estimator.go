package tokens

// Estimator counts tokens in a text. Implementations must be safe for
// concurrent use.
type Estimator interface {
	Count(text string) int
}

// CharsPerToken is the approximation ratio used by the heuristic estimator:
// one token per four characters of text.
const CharsPerToken = 4

// Heuristic estimates token counts from text length alone. It is the
// default estimator; counts produced this way are approximations and may
// diverge from what the provider actually bills.
type Heuristic struct{}

var _ Estimator = Heuristic{}

// Count returns len(text) / 4.
func (Heuristic) Count(text string) int {
	return len(text) / CharsPerToken
}

// Total sums the estimated tokens across texts.
func Total(est Estimator, texts []string) int {
	total := 0
	for _, text := range texts {
		total += est.Count(text)
	}
	return total
}

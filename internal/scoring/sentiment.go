// Package scoring hosts the two model collaborators the pipeline consumes
// as pure functions: per-text sentiment scoring and batch topic
// classification. Both are deterministic and side-effect-free; the pipeline
// never retries them.
package scoring

import "strings"

// SentimentAnalyzer scores text with a weighted keyword lexicon, producing
// a compound polarity score in [-1, 1].
type SentimentAnalyzer struct {
	positiveWords map[string]float64
	negativeWords map[string]float64
	negations     map[string]struct{}
}

// NewSentimentAnalyzer creates an analyzer with the built-in news lexicon.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{
		positiveWords: buildPositiveWords(),
		negativeWords: buildNegativeWords(),
		negations: map[string]struct{}{
			"not": {}, "no": {}, "never": {}, "without": {}, "n't": {},
		},
	}
}

// Score returns the compound polarity of text. Empty or lexicon-free text
// scores 0.
func (a *SentimentAnalyzer) Score(text string) float64 {
	if text == "" {
		return 0.0
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0.0
	}

	var score float64
	matched := 0
	negated := false

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:'\"()")

		if _, ok := a.negations[word]; ok {
			negated = true
			continue
		}

		weight, hit := a.positiveWords[word]
		if !hit {
			if w, ok := a.negativeWords[word]; ok {
				weight, hit = -w, true
			}
		}

		if hit {
			if negated {
				weight = -weight
			}
			score += weight
			matched++
		}
		negated = false
	}

	if matched == 0 {
		return 0.0
	}

	// Normalize by matched terms so short headlines are not drowned out by
	// their length, then dampen toward the matched density.
	normalized := score / float64(matched)
	density := float64(matched) / float64(len(words))
	compound := normalized * (0.5 + 0.5*density)

	if compound > 1.0 {
		compound = 1.0
	} else if compound < -1.0 {
		compound = -1.0
	}

	return compound
}

func buildPositiveWords() map[string]float64 {
	return map[string]float64{
		"win":          0.7,
		"wins":         0.7,
		"won":          0.7,
		"victory":      0.8,
		"triumph":      0.8,
		"success":      0.8,
		"successful":   0.8,
		"breakthrough": 0.9,
		"record":       0.5,
		"growth":       0.6,
		"surge":        0.5,
		"rally":        0.5,
		"boom":         0.6,
		"gain":         0.5,
		"gains":        0.5,
		"profit":       0.6,
		"profits":      0.6,
		"strong":       0.5,
		"improve":      0.6,
		"improves":     0.6,
		"improved":     0.6,
		"recovery":     0.6,
		"recovers":     0.6,
		"good":         0.6,
		"great":        0.8,
		"best":         0.8,
		"positive":     0.6,
		"optimistic":   0.6,
		"hope":         0.5,
		"hopeful":      0.6,
		"peace":        0.7,
		"agreement":    0.5,
		"deal":         0.4,
		"celebrate":    0.7,
		"celebrates":   0.7,
		"award":        0.6,
		"awarded":      0.6,
		"innovative":   0.6,
		"thriving":     0.7,
		"soar":         0.6,
		"soars":        0.6,
		"happy":        0.7,
		"praise":       0.6,
		"praised":      0.6,
	}
}

func buildNegativeWords() map[string]float64 {
	return map[string]float64{
		"crisis":       0.8,
		"war":          0.8,
		"attack":       0.8,
		"attacks":      0.8,
		"death":        0.9,
		"deaths":       0.9,
		"dead":         0.9,
		"killed":       0.9,
		"kills":        0.9,
		"disaster":     0.9,
		"crash":        0.8,
		"crashes":      0.8,
		"collapse":     0.8,
		"loss":         0.6,
		"losses":       0.6,
		"lose":         0.6,
		"lost":         0.6,
		"decline":      0.5,
		"declines":     0.5,
		"drop":         0.5,
		"drops":        0.5,
		"plunge":       0.7,
		"plunges":      0.7,
		"fear":         0.6,
		"fears":        0.6,
		"threat":       0.7,
		"threats":      0.7,
		"warning":      0.5,
		"warns":        0.5,
		"bad":          0.6,
		"worst":        0.8,
		"negative":     0.6,
		"fail":         0.7,
		"fails":        0.7,
		"failed":       0.7,
		"failure":      0.7,
		"fraud":        0.8,
		"scandal":      0.7,
		"corruption":   0.7,
		"violence":     0.8,
		"violent":      0.8,
		"outbreak":     0.7,
		"recession":    0.7,
		"unemployment": 0.6,
		"sad":          0.6,
		"angry":        0.6,
		"protest":      0.4,
		"protests":     0.4,
		"injured":      0.7,
		"damage":       0.6,
		"layoffs":      0.7,
		"bankruptcy":   0.8,
	}
}

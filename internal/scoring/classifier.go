package scoring

import (
	"strings"

	"newspulse/internal/domain"
)

// TopicClassifier assigns one of the fixed category labels (World, Sports,
// Business, Sci/Tech) to each text by keyword evidence. Classification is
// batched once per ingestion cycle; the output is positionally aligned with
// the input and always the same length.
type TopicClassifier struct {
	keywords map[string][]string
}

// NewTopicClassifier creates a classifier with the built-in keyword sets.
func NewTopicClassifier() *TopicClassifier {
	return &TopicClassifier{keywords: buildTopicKeywords()}
}

// Classify labels every text in the batch. The returned slice has exactly
// len(texts) entries.
func (c *TopicClassifier) Classify(texts []string) ([]string, error) {
	labels := make([]string, len(texts))
	for i, text := range texts {
		labels[i] = c.classifyOne(text)
	}
	return labels, nil
}

func (c *TopicClassifier) classifyOne(text string) string {
	lowered := strings.ToLower(text)
	words := strings.Fields(lowered)

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.Trim(w, ".,!?;:'\"()")] = struct{}{}
	}

	best := domain.CategoryWorld
	bestScore := 0
	// Fixed evaluation order keeps ties deterministic.
	for _, category := range []string{
		domain.CategorySports,
		domain.CategoryBusiness,
		domain.CategorySciTech,
		domain.CategoryWorld,
	} {
		score := 0
		for _, kw := range c.keywords[category] {
			if strings.Contains(kw, " ") {
				if strings.Contains(lowered, kw) {
					score += 2
				}
				continue
			}
			if _, ok := set[kw]; ok {
				score++
			}
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}

	return best
}

func buildTopicKeywords() map[string][]string {
	return map[string][]string{
		domain.CategorySports: {
			"match", "game", "season", "league", "championship", "cup",
			"tournament", "coach", "player", "players", "team", "goal",
			"score", "scored", "football", "soccer", "basketball", "tennis",
			"cricket", "olympics", "stadium", "fifa", "nba", "nfl",
			"striker", "defender", "transfer window",
		},
		domain.CategoryBusiness: {
			"market", "markets", "stock", "stocks", "shares", "earnings",
			"revenue", "profit", "profits", "investor", "investors",
			"economy", "economic", "inflation", "bank", "banks", "trade",
			"merger", "acquisition", "startup", "ipo", "ceo", "company",
			"companies", "interest rate", "central bank", "wall street",
		},
		domain.CategorySciTech: {
			"technology", "tech", "software", "hardware", "ai",
			"artificial", "intelligence", "robot", "robots", "research",
			"researchers", "scientists", "science", "study", "space",
			"nasa", "satellite", "quantum", "chip", "chips", "smartphone",
			"app", "internet", "cyber", "data", "algorithm", "climate",
			"vaccine", "machine learning",
		},
		domain.CategoryWorld: {
			"government", "president", "minister", "election", "elections",
			"parliament", "war", "military", "treaty", "border",
			"diplomatic", "sanctions", "united", "nations", "embassy",
			"refugee", "refugees", "summit", "protest", "protests",
			"country", "national", "foreign", "prime minister",
		},
	}
}

package analysis

import "github.com/jonreiter/govader"

type SentimentScorer interface {
	Score(headlines []string) float64
}

type sentimentScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewSentimentScorer() SentimentScorer {
	return &sentimentScorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score maps the mean VADER compound polarity of the headlines from [-1,1]
// onto [0,1]. No headlines means no signal, which is the neutral 0.5 rather
// than a penalty.
func (s *sentimentScorer) Score(headlines []string) float64 {
	if len(headlines) == 0 {
		return 0.5
	}

	var sum float64
	for _, h := range headlines {
		sum += s.analyzer.PolarityScores(h).Compound
	}
	mean := sum / float64(len(headlines))
	return (mean + 1) / 2
}

package quiz

import "strings"

// Keyword lists for the feedback sentiment heuristic, both languages.
// Deliberately coarse: the score is a reading aid, not a grade.
var (
	positiveWords = []string{
		"correct", "right", "good", "great", "excellent", "accurate", "well done",
		"correta", "correto", "certo", "certa", "bom", "boa", "ótimo", "ótima",
		"excelente", "preciso", "precisa", "muito bem",
	}
	negativeWords = []string{
		"incorrect", "wrong", "mistake", "error", "missing", "inaccurate", "not correct",
		"incorreta", "incorreto", "errado", "errada", "erro", "equívoco", "faltou",
		"faltando", "impreciso", "imprecisa",
	}
)

// gradeFeedback derives a coarse correctness verdict and a 0-100 score
// from free-form feedback text. For multiple choice the verdict hinges
// on a literal "correct" with no "incorrect" nearby; for dissertative
// answers it counts positive against negative indicator words. This is
// an acknowledged approximation, not a precise grader.
func gradeFeedback(kind QuestionKind, feedback string) (bool, int) {
	lower := strings.ToLower(feedback)

	if kind == KindMultipleChoice {
		negative := strings.Contains(lower, "incorrect") ||
			strings.Contains(lower, "incorreta") ||
			strings.Contains(lower, "incorreto")
		positive := strings.Contains(lower, "correct") ||
			strings.Contains(lower, "correta") ||
			strings.Contains(lower, "correto")
		correct := positive && !negative
		if correct {
			return true, 100
		}
		return false, 0
	}

	var pos, neg int
	for _, w := range positiveWords {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(lower, w)
	}

	switch {
	case pos == 0 && neg == 0:
		return false, 50
	case neg == 0:
		return true, 90
	case pos == 0:
		return false, 20
	}

	score := pos * 100 / (pos + neg)
	return score >= 60, score
}

// extractSuggestions collects the "- " lines the evaluation prompt asks
// the model to emit. Lines that are not suggestions pass through to the
// feedback untouched.
func extractSuggestions(feedback string) []string {
	var out []string
	for _, line := range strings.Split(feedback, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			if rest = strings.TrimSpace(rest); rest != "" {
				out = append(out, rest)
			}
		}
	}
	return out
}

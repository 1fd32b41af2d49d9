package quiz

import (
	"regexp"
	"strings"
)

// codeTopicRe matches contexts or question text about programming, in
// both shipped languages. Word-anchored so "function" matches but
// "functional analysis"... also matches, which is fine: the gate only
// fires when the question additionally claims to show code.
var codeTopicRe = regexp.MustCompile(`(?i)\b(code|coding|program|programming|programa|programação|algorithm|algoritmo|function|função|python|javascript|typescript|java|golang|rust|kotlin|swift|ruby|php|sql|html|css|bash|script)\b`)

// refersToCodeRe matches phrasings that point at a code sample that
// should be present in the question body.
var refersToCodeRe = regexp.MustCompile(`(?i)(the (following|above) code|this code|code (below|above)|o c[oó]digo (a seguir|acima|abaixo)|este c[oó]digo|o seguinte c[oó]digo)`)

var inlineCodeRe = regexp.MustCompile("`[^`\n]+`")

// isCodeTopic reports whether the study material or the question itself
// reads as a programming topic.
func isCodeTopic(question string, contexts []string) bool {
	if codeTopicRe.MatchString(question) {
		return true
	}
	for _, c := range contexts {
		if codeTopicRe.MatchString(c) {
			return true
		}
	}
	return false
}

func hasCodeMarkup(s string) bool {
	return strings.Contains(s, "```") || inlineCodeRe.MatchString(s)
}

// checkCodeContent is the post-generation quality gate: a question on a
// programming topic that talks about "the following code" must actually
// embed that code, fenced or inline.
func checkCodeContent(question string, contexts []string) error {
	if !isCodeTopic(question, contexts) {
		return nil
	}
	if !refersToCodeRe.MatchString(question) {
		return nil
	}
	if hasCodeMarkup(question) {
		return nil
	}
	return &MissingCodeContentError{Question: question}
}

// Package cleaner normalizes raw sequence-model output into presentable text.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// specialTokens lists the model artifacts stripped before any other normalization.
// Removal runs token by token in this order, so overlapping markers such as
// "<<UNK>>" are reduced the same way on every run.
var specialTokens = []string{
	"<n>", "</s>", "<pad>", "<unk>", "<s>", "<mask>",
	"<|endoftext|>", "<|startoftext|>", "<bos>", "<eos>",
	"[UNK]", "[PAD]", "[CLS]", "[SEP]", "[MASK]",
	"<extra_id_0>", "<extra_id_1>", "<extra_id_2>",
	"<<UNK>>", "##", "<|im_start|>", "<|im_end|>",
}

var (
	tokenPatterns = compileTokens(specialTokens)

	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	controlPattern    = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}]+`)
	leadingJunk       = regexp.MustCompile(`^[^\p{L}\p{N}\p{M}_'"]+`)
	trailingJunk      = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_'".,!?;:]+$`)
	spaceBeforePunct  = regexp.MustCompile(`\s+([.,!?;:])`)
	missingSpaceAfter = regexp.MustCompile(`([.,!?;:])([A-Za-z])`)
	repeatedDots      = regexp.MustCompile(`\.{2,}`)
	repeatedBangs     = regexp.MustCompile(`!{2,}`)
	repeatedQuestions = regexp.MustCompile(`\?{2,}`)
)

func compileTokens(tokens []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(token)))
	}
	return out
}

// maxPasses bounds the fixed-point loop in Clean. Each extra pass only runs
// when removing control characters or tags joined fragments into a new marker.
const maxPasses = 16

// Clean removes special tokens, markup and control characters from generated
// text, then repairs whitespace, punctuation spacing and leading capitalization.
// The pass is repeated until the text stops changing, so Clean(Clean(x)) equals
// Clean(x) and no marker survives. It never fails; the worst case is an empty
// string.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}

	cleaned := cleanOnce(text)
	for i := 1; i < maxPasses; i++ {
		next := cleanOnce(cleaned)
		if next == cleaned {
			break
		}
		cleaned = next
	}
	return cleaned
}

func cleanOnce(text string) string {
	cleaned := text
	for _, pattern := range tokenPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = tagPattern.ReplaceAllString(cleaned, "")

	cleaned = controlPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	cleaned = leadingJunk.ReplaceAllString(cleaned, "")
	cleaned = trailingJunk.ReplaceAllString(cleaned, "")

	cleaned = spaceBeforePunct.ReplaceAllString(cleaned, "$1")
	cleaned = missingSpaceAfter.ReplaceAllString(cleaned, "$1 $2")

	cleaned = capitalizeFirst(cleaned)

	cleaned = repeatedDots.ReplaceAllString(cleaned, ".")
	cleaned = repeatedBangs.ReplaceAllString(cleaned, "!")
	cleaned = repeatedQuestions.ReplaceAllString(cleaned, "?")
	return cleaned
}

func capitalizeFirst(text string) string {
	first, size := utf8.DecodeRuneInString(text)
	if size == 0 || !unicode.IsLower(first) {
		return text
	}
	return string(unicode.ToUpper(first)) + text[size:]
}

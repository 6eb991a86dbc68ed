package lyrics

import "strings"

// emphasisKeywords are upper-cased wherever they appear inside a token, to
// push the TTS voice toward a punchier delivery.
var emphasisKeywords = []string{"roast", "fire", "burn", "drop", "beat", "flow"}

// rhymeSuffixes get a trailing comma — a micro-pause that lands the rhyme.
var rhymeSuffixes = []string{"tion", "ing", "ight", "ate", "ack", "ow"}

// FormatForSpeech transforms a bracket-marked lyric script into a single
// string tuned for spoken delivery. The transform is pure: no randomness, no
// external state, so identical input always yields identical output.
//
// Per line: a bracketed [SECTION] marker becomes a pause token — "... YO! ..."
// for HOOK/CHORUS sections, "..." otherwise — and every other line runs
// through the word-level enhancer. Lines are joined with " ... ".
func FormatForSpeech(text string) string {
	var formatted []string
	for _, line := range strings.SplitAfter(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := strings.ToUpper(strings.Trim(line, "[]"))
			if section == "HOOK" || section == "CHORUS" {
				formatted = append(formatted, "... YO! ...")
			} else {
				formatted = append(formatted, "...")
			}
			continue
		}

		formatted = append(formatted, enhanceLine(line))
	}
	return strings.Join(formatted, " ... ")
}

// enhanceLine applies the word-level delivery rules to one lyric line.
func enhanceLine(line string) string {
	words := strings.Fields(line)
	out := make([]string, len(words))
	for i, word := range words {
		switch {
		case containsKeyword(word):
			out[i] = strings.ToUpper(word)
		case hasRhymeSuffix(word):
			out[i] = word + ","
		default:
			out[i] = word
		}
	}

	enhanced := strings.Join(out, " ")
	enhanced = strings.ReplaceAll(enhanced, "!", "! YEAH!")
	enhanced = strings.ReplaceAll(enhanced, "?", "? UH!")
	return enhanced
}

func containsKeyword(word string) bool {
	lower := strings.ToLower(word)
	for _, kw := range emphasisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasRhymeSuffix(word string) bool {
	for _, suffix := range rhymeSuffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

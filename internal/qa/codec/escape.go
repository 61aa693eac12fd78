package codec

import "strings"

// EscapeMarkdown escapes `_` so that predictor names survive telegram's
// legacy markdown parser.
func EscapeMarkdown(name string) string {
	return strings.ReplaceAll(name, "_", `\_`)
}

// UnescapeMarkdown reverts EscapeMarkdown.
//
// It must only be applied to escaped names: a raw name that legitimately
// contains `\_` is corrupted by it.
func UnescapeMarkdown(name string) string {
	return strings.ReplaceAll(name, `\_`, "_")
}

var textEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdownText escapes every character legacy markdown treats as markup,
// so arbitrary text is rendered literally instead of being rejected by telegram.
func EscapeMarkdownText(text string) string {
	return textEscaper.Replace(text)
}

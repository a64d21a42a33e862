package filing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer applies NFKC and strips invisible format characters (zero-width
// spaces, soft hyphens, BOMs) in one pass.
var normalizer = transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)))

var (
	singleQuoteRe = regexp.MustCompile("[‘’‚‛′ʼ´]")
	doubleQuoteRe = regexp.MustCompile("[“”„″]")
	dashRe        = regexp.MustCompile("[–—]")
	bulletRe      = regexp.MustCompile("[•●■▪◦⁃∙]")
	spaceRe       = regexp.MustCompile(`\s+`)
)

// NormalizeText folds filing text to plain ASCII-ish form: NFKC, format-char
// removal, typographic quotes and dashes to their plain equivalents, bullets
// and non-breaking spaces to spaces, whitespace collapsed.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(normalizer, s)
	if err != nil {
		out = s
	}
	out = singleQuoteRe.ReplaceAllString(out, "'")
	out = doubleQuoteRe.ReplaceAllString(out, `"`)
	out = dashRe.ReplaceAllString(out, "-")
	out = bulletRe.ReplaceAllString(out, " ")
	out = strings.NewReplacer("\u00a0", " ", "\ufeff", " ").Replace(out)
	out = spaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

var (
	tocCaptionRe = regexp.MustCompile(`(?i)^(table of contents|index to exhibits|index to financial statements)$`)
	partOnlyRe   = regexp.MustCompile(`(?i)^part [ivxlcdm]+$`)
	tableLabelRe = regexp.MustCompile(`(?i)^table \d+(\.\d+)*[:.]?\b`)
	pageNumRe    = regexp.MustCompile(`^\d{1,4}$`)
	pageOfRe     = regexp.MustCompile(`(?i)^page \d{1,4}( of \d{1,4})?$`)
	pageFooterRe = regexp.MustCompile(`(?i)\|\s*\d{4}\s*form\s*10-[kq]\s*\|`)
)

// isNoiseLine reports residual boilerplate that must not enter item text or
// the structure tree: TOC captions, bare PART headers, table labels, page
// numbers and page footers.
func isNoiseLine(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	return tocCaptionRe.MatchString(t) ||
		partOnlyRe.MatchString(t) ||
		tableLabelRe.MatchString(t) ||
		pageNumRe.MatchString(t) ||
		pageOfRe.MatchString(t) ||
		pageFooterRe.MatchString(t)
}

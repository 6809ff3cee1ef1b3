// Package prompt composes the natural-language instruction sent to the vision
// model alongside each image.
package prompt

// OCR modes. Each selects a different base instruction sentence.
const (
	ModeLegal       = "Legal/Official Document"
	ModeHandwriting = "Handwriting Focus"
	ModeMixed       = "Mixed Text"
	ModeScan        = "Document Scan"
	ModeCreative    = "Creative/Artistic Text"
)

// SameAsOriginal is the target-language value that disables translation.
const SameAsOriginal = "Same as original"

// Modes lists the supported OCR modes in presentation order.
var Modes = []string{ModeLegal, ModeHandwriting, ModeMixed, ModeScan, ModeCreative}

// Languages lists the supported target languages in presentation order.
var Languages = []string{
	SameAsOriginal, "English", "Spanish", "French", "German", "Italian",
	"Portuguese", "Russian", "Chinese", "Japanese", "Korean",
	"Arabic", "Hindi", "Dutch", "Swedish", "Norwegian",
}

// Options selects the mode and conditional directives for one instruction.
type Options struct {
	Mode               string
	TargetLanguage     string
	PreserveFormatting bool
	FixGrammar         bool
	IncludeConfidence  bool
}

const formattingRules = ` CRITICAL FORMATTING RULES:
- Preserve ALL numbering exactly: (6), (7), (8), etc.
- Use proper indentation with spaces (not tabs)
- For underlined text: Use CAPITAL LETTERS or add underscores like _HEADING_
- DO NOT use HTML tags like <u>, <b>, or similar
- Maintain exact spacing and line breaks as shown
- Keep the same paragraph indentation levels
- Preserve all punctuation and special characters exactly
- Use plain text formatting only - no markup tags
- For emphasized text, use CAPITALS or _underscores_
- Maintain the visual hierarchy with proper spacing between sections`

// Build deterministically composes the instruction string for the given
// options. It is pure: same options, same string.
func Build(opts Options) string {
	var p string
	switch opts.Mode {
	case ModeLegal:
		p = "You are an expert at extracting text from legal and official documents. Extract ALL text with perfect accuracy, " +
			"maintaining exact formatting, numbering systems, indentation, and legal document structure. " +
			"Pay special attention to section numbers, subsections, clauses, and hierarchical organization."
	case ModeHandwriting:
		p = "You are an expert at reading handwritten text. Extract ALL text from this handwritten image with high accuracy. " +
			"Pay special attention to cursive writing, connected letters, and personal writing styles."
	case ModeMixed:
		p = "Extract all text from this image, which may contain both handwritten and printed text."
	case ModeScan:
		p = "Extract all text from this document image, maintaining the exact structure and layout."
	default:
		p = "Extract text from this image, which may contain artistic, stylized, or decorative text."
	}

	if opts.TargetLanguage != "" && opts.TargetLanguage != SameAsOriginal {
		p += " Translate the extracted text to " + opts.TargetLanguage + "."
	}

	if opts.PreserveFormatting {
		p += formattingRules
	} else {
		p += " Preserve basic paragraph structure and line breaks."
	}

	if opts.FixGrammar {
		p += " Fix any obvious spelling or grammar errors while maintaining the original meaning and formatting."
	}
	if opts.IncludeConfidence {
		p += " If you're uncertain about any words, add [?] after them."
	}

	p += "\n\nProvide ONLY the extracted text in plain text format. NO HTML tags, NO markup. Use spaces for indentation and underscores or CAPITALS for emphasis."
	return p
}

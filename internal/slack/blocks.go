package slack

import "unicode/utf8"

const (
	blockHeader  = "header"
	blockSection = "section"
	blockDivider = "divider"

	textPlain    = "plain_text"
	textMarkdown = "mrkdwn"
)

// Message represents a Slack webhook message payload
type Message struct {
	// Text is the fallback text for the notification
	Text string `json:"text"`
	// Blocks holds the rich layout blocks for the message
	Blocks []Block `json:"blocks,omitempty"`
}

// Block represents a Slack Block Kit block
type Block struct {
	// Type is the block type (section, divider, header, etc.)
	Type string `json:"type"`
	// Text is the text object for this block
	Text *TextObject `json:"text,omitempty"`
	// Fields holds multiple text objects for section blocks
	Fields []TextObject `json:"fields,omitempty"`
}

// TextObject represents a Slack text object
type TextObject struct {
	// Type is the text type (plain_text or mrkdwn)
	Type string `json:"type"`
	// Text is the actual text content
	Text string `json:"text"`
}

// Header returns a plain-text header block
func Header(text string) Block {
	return Block{Type: blockHeader, Text: &TextObject{Type: textPlain, Text: Truncate(text, TextLimit)}}
}

// Section returns a markdown section block
func Section(text string) Block {
	return Block{Type: blockSection, Text: &TextObject{Type: textMarkdown, Text: Truncate(text, TextLimit)}}
}

// Fields returns a section block of markdown fields
func Fields(texts ...string) Block {
	fields := make([]TextObject, 0, len(texts))
	for _, t := range texts {
		fields = append(fields, TextObject{Type: textMarkdown, Text: Truncate(t, TextLimit)})
	}

	return Block{Type: blockSection, Fields: fields}
}

// Divider returns a divider block
func Divider() Block {
	return Block{Type: blockDivider}
}

// Truncate shortens text to at most maxLen bytes, ending in an ellipsis,
// without splitting a UTF-8 sequence
func Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	cut := max(maxLen-3, 0)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut] + "..."
}

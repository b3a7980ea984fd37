package slopplot

import (
	"fmt"
	"strings"
)

const fence = "```"

// CodeBlock is a fenced snippet extracted from a completion.
type CodeBlock struct {
	Language string // Fence tag, e.g. "python"; empty when untagged
	Code     string // Trimmed interior
}

// ExtractCode returns the trimmed interior of the first ```python block.
func ExtractCode(completion string) (string, error) {
	block, err := ExtractCodeBlock(completion, DefaultLanguage)
	if err != nil {
		return "", err
	}
	return block.Code, nil
}

// ExtractCodeBlock isolates the first block opened with ```<language>.
//
// The split is literal: everything after the opening marker up to the next ``` is the code.
// When the closing marker is missing the remainder is used. An empty language accepts the
// first fence regardless of its tag.
func ExtractCodeBlock(completion, language string) (CodeBlock, error) {
	text := strings.TrimSpace(completion)

	if language == "" {
		blocks := ExtractCodeBlocks(text)
		if len(blocks) == 0 {
			return CodeBlock{}, malformed(completion, "no fenced code block found")
		}
		return blocks[0], nil
	}

	opening := fence + language
	_, after, found := strings.Cut(text, opening)
	if !found {
		return CodeBlock{}, malformed(completion, fmt.Sprintf("no %q fence found", opening))
	}

	code, _, _ := strings.Cut(after, fence)
	return CodeBlock{Language: language, Code: strings.TrimSpace(code)}, nil
}

// ExtractCodeBlocks returns every complete fenced block in order of appearance.
func ExtractCodeBlocks(completion string) []CodeBlock {
	var blocks []CodeBlock
	rest := completion
	for {
		_, after, found := strings.Cut(rest, fence)
		if !found {
			return blocks
		}
		body, remaining, closed := strings.Cut(after, fence)
		if !closed {
			return blocks
		}

		// The fence tag runs up to the first newline.
		language, code, hasNewline := strings.Cut(body, "\n")
		if !hasNewline || strings.ContainsAny(strings.TrimSpace(language), " \t") {
			language, code = "", body
		}

		blocks = append(blocks, CodeBlock{
			Language: strings.TrimSpace(language),
			Code:     strings.TrimSpace(code),
		})
		rest = remaining
	}
}

// MalformedResponseError reports a completion without the expected fenced block.
type MalformedResponseError struct {
	Reason  string
	Excerpt string // Leading part of the completion
}

func (e *MalformedResponseError) Error() string {
	if e.Excerpt == "" {
		return e.Reason + " (empty completion)"
	}
	return fmt.Sprintf("%s in completion: %q", e.Reason, e.Excerpt)
}

func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

func malformed(completion, reason string) error {
	excerpt := strings.TrimSpace(completion)
	if r := []rune(excerpt); len(r) > 120 {
		excerpt = string(r[:120]) + "..."
	}
	return &MalformedResponseError{Reason: reason, Excerpt: excerpt}
}

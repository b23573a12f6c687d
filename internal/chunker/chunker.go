package chunker

import (
	"math"
	"strings"

	"document-chat/internal/models"
)

const DefaultMaxWords = 500

// Split breaks fullText into word-bounded chunks of at most maxWords
// words each, tagged with byte offsets into fullText and an estimated
// page number. Page estimation maps character progress through the text
// onto totalPages, so it is approximate by construction.
func Split(fullText string, totalPages, maxWords int) []models.Chunk {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if totalPages < 1 {
		totalPages = 1
	}

	words := strings.Fields(fullText)
	if len(words) == 0 {
		return nil
	}

	var chunks []models.Chunk
	// searchFrom only moves forward, so offsets stay non-decreasing
	// even when the same word repeats across chunk boundaries.
	searchFrom := 0
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		text := strings.Join(words[i:end], " ")

		start := searchFrom
		if rel := strings.Index(fullText[searchFrom:], words[i]); rel >= 0 {
			start = searchFrom + rel
		}
		endOffset := start + len(text)

		chunks = append(chunks, models.Chunk{
			Text:        text,
			StartOffset: start,
			EndOffset:   endOffset,
			PageNumber:  estimatePage(start, len(fullText), totalPages),
		})
		searchFrom = endOffset
	}
	return chunks
}

func estimatePage(offset, totalChars, totalPages int) int {
	if totalChars == 0 {
		return 1
	}
	progress := float64(offset) / float64(totalChars)
	page := int(math.Ceil(progress * float64(totalPages)))
	if page < 1 {
		page = 1
	}
	return page
}

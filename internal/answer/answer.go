package answer

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultTag marks the final answer inside a backend response
const DefaultTag = "samp"

// Extractor pulls the relevant part out of a raw backend response
type Extractor interface {
	Extract(raw string) string
}

// TagExtractor returns the content of the last <tag>...</tag> block,
// falling back to the whole response when no block is present.
type TagExtractor struct {
	tag     string
	pattern *regexp.Regexp
	logger  *slog.Logger
}

// NewTagExtractor creates an extractor for the given tag name
func NewTagExtractor(tag string, logger *slog.Logger) *TagExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	quoted := regexp.QuoteMeta(tag)
	return &TagExtractor{
		tag:     tag,
		pattern: regexp.MustCompile(`(?s)<` + quoted + `>(.*?)</` + quoted + `>`),
		logger:  logger,
	}
}

// Extract never panics; on any internal failure it degrades to the
// whitespace-normalized raw text.
func (e *TagExtractor) Extract(raw string) (out string) {
	if raw == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("failed to parse tagged content",
				"tag", e.tag,
				"error", fmt.Sprint(r))
			out = Normalize(raw)
		}
	}()

	matches := e.pattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return Normalize(raw)
	}
	return Normalize(matches[len(matches)-1][1])
}

// Normalize collapses whitespace runs into single spaces and trims the ends
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var defaultExtractor = NewTagExtractor(DefaultTag, nil)

// Extract applies the default <samp> extractor
func Extract(raw string) string {
	return defaultExtractor.Extract(raw)
}

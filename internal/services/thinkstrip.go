package services

import "strings"

const (
	thinkOpenTag  = "<think>"
	thinkCloseTag = "</think>"
)

// ThinkStripper removes <think>...</think> spans from a token stream.
// Reasoning models emit their chain of thought inside these delimiters and
// the client must never see it. The stripper is stateful because a span
// opened in one chunk can close many chunks later, and a tag itself can be
// split across a chunk boundary.
type ThinkStripper struct {
	inThink bool
	pending string
}

// Feed consumes one chunk and returns the visible text it produced. Text
// that might be the start of a split tag is held back until the next chunk.
func (s *ThinkStripper) Feed(chunk string) string {
	buf := s.pending + chunk
	s.pending = ""

	var out strings.Builder
	for buf != "" {
		if s.inThink {
			idx := strings.Index(buf, thinkCloseTag)
			if idx < 0 {
				// Hold back a possible split closing tag, drop the rest.
				s.pending = tagPrefixSuffix(buf, thinkCloseTag)
				return out.String()
			}
			buf = buf[idx+len(thinkCloseTag):]
			s.inThink = false
			continue
		}

		idx := strings.Index(buf, thinkOpenTag)
		if idx < 0 {
			hold := tagPrefixSuffix(buf, thinkOpenTag)
			out.WriteString(buf[:len(buf)-len(hold)])
			s.pending = hold
			return out.String()
		}
		out.WriteString(buf[:idx])
		buf = buf[idx+len(thinkOpenTag):]
		s.inThink = true
	}

	return out.String()
}

// Flush returns any held-back text once the stream has ended. A partial tag
// at end of stream was never a tag, so it becomes visible; an unterminated
// think span stays hidden.
func (s *ThinkStripper) Flush() string {
	if s.inThink {
		s.pending = ""
		return ""
	}
	out := s.pending
	s.pending = ""
	return out
}

// StripThinkTags removes think spans from a complete string.
func StripThinkTags(text string) string {
	var s ThinkStripper
	return s.Feed(text) + s.Flush()
}

// tagPrefixSuffix returns the longest suffix of s that is a proper prefix
// of tag.
func tagPrefixSuffix(s, tag string) string {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if s[len(s)-n:] == tag[:n] {
			return s[len(s)-n:]
		}
	}
	return ""
}

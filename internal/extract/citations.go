package extract

import (
	"fmt"
	"sort"
)

// Annotation marks a citation-bearing span in raw answer text.
// Start and End are character offsets into the text (the unit the
// extraction API reports annotation indices in); Source identifies the
// cited document span.
type Annotation struct {
	Start  int
	End    int
	Source string
}

// SubstituteCitations replaces each citation-bearing span with a
// zero-based bracketed marker and returns the rewritten text plus the
// parallel citation list. Markers are assigned in textual order; entry i
// has the form "[i]<source>". Text outside the cited spans is preserved
// unchanged. Annotations with invalid or overlapping bounds are skipped.
//
// Offsets are interpreted per character, not per byte, so spans stay
// aligned in text with multi-byte characters.
func SubstituteCitations(text string, annotations []Annotation) (string, []string) {
	citations := []string{}
	if len(annotations) == 0 {
		return text, citations
	}

	ordered := make([]Annotation, len(annotations))
	copy(ordered, annotations)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	runes := []rune(text)
	var out []rune
	cursor := 0
	for _, ann := range ordered {
		if ann.Start < cursor || ann.End < ann.Start || ann.End > len(runes) {
			continue
		}
		index := len(citations)
		out = append(out, runes[cursor:ann.Start]...)
		out = append(out, []rune(fmt.Sprintf("[%d]", index))...)
		citations = append(citations, fmt.Sprintf("[%d]%s", index, ann.Source))
		cursor = ann.End
	}
	out = append(out, runes[cursor:]...)

	return string(out), citations
}

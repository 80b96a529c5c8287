// Package interpret turns the narrative explanation of a trajectory into
// categorized bullet lists, and builds the requests that ask for one.
package interpret

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Section names one of the four interpretation categories
type Section string

const (
	SectionPhysiological Section = "physiological"
	SectionTrends        Section = "trends"
	SectionClinical      Section = "clinical"
	SectionConcerns      Section = "concerns"
)

// Result is the structured form of an interpretation. Lists are never nil.
type Result struct {
	Physiological []string `json:"physiological"`
	Trends        []string `json:"trends"`
	Clinical      []string `json:"clinical"`
	Concerns      []string `json:"concerns"`
}

// NewResult returns a result with empty lists
func NewResult() Result {
	return Result{
		Physiological: []string{},
		Trends:        []string{},
		Clinical:      []string{},
		Concerns:      []string{},
	}
}

// Empty reports whether nothing was recognized
func (r Result) Empty() bool {
	return len(r.Physiological) == 0 && len(r.Trends) == 0 && len(r.Clinical) == 0 && len(r.Concerns) == 0
}

func (r *Result) add(s Section, line string) {
	switch s {
	case SectionPhysiological:
		r.Physiological = append(r.Physiological, line)
	case SectionTrends:
		r.Trends = append(r.Trends, line)
	case SectionClinical:
		r.Clinical = append(r.Clinical, line)
	case SectionConcerns:
		r.Concerns = append(r.Concerns, line)
	}
}

// Header patterns are checked in order against the trimmed, lower-cased line.
// They are unanchored: the narrative service does not format headers consistently.
var headers = []struct {
	section Section
	pattern *regexp.Regexp
}{
	{SectionPhysiological, regexp.MustCompile(`1\.|\bphysiological|impact`)},
	{SectionTrends, regexp.MustCompile(`2\.|\bkey trends|\btrends|\bmonitored`)},
	{SectionClinical, regexp.MustCompile(`3\.|\bclinical|implications`)},
	{SectionConcerns, regexp.MustCompile(`4\.|\bconcerns|\brecommendations`)},
}

var (
	bulletStart  = regexp.MustCompile(`^[-•\d.\s]`)
	bulletPrefix = regexp.MustCompile(`^[-•\d.\s]+`)
)

const minContentLength = 10

// Parse splits text into the four sections. Lines before the first header
// and short lines without a bullet marker are dropped. Parse never fails;
// unrecognized text yields an empty result.
func Parse(text string) Result {
	res := NewResult()
	var current Section

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		if s, ok := matchHeader(lower); ok {
			current = s
			continue
		}
		if line == "" || current == "" {
			continue
		}
		if !bulletStart.MatchString(line) && utf8.RuneCountInString(line) <= minContentLength {
			continue
		}

		content := strings.TrimSpace(bulletPrefix.ReplaceAllString(raw, ""))
		if content == "" {
			continue
		}
		res.add(current, content)
	}
	return res
}

func matchHeader(line string) (Section, bool) {
	for _, h := range headers {
		if h.pattern.MatchString(line) {
			return h.section, true
		}
	}
	return "", false
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

var (
	copingSplit   = regexp.MustCompile(`(?i)Coping Strategies`)
	anyItem       = regexp.MustCompile(`\n?\d\.\s+`)
	overItem      = regexp.MustCompile(`1\.\s+Over`)
	secondItem    = regexp.MustCompile(`2\.\s+`)
	copingItemsRe = []*regexp.Regexp{
		regexp.MustCompile(`2\.\s+`),
		regexp.MustCompile(`3\.\s+`),
		regexp.MustCompile(`4\.\s+`),
	}
)

// mentalHealthGrammar splits on the first "Coping Strategies" into a PHQ-2
// screening part and a coping part.
type mentalHealthGrammar struct{}

func (mentalHealthGrammar) format(text string) string {
	questions, coping := text, ""
	if loc := copingSplit.FindStringIndex(text); loc != nil {
		questions, coping = text[:loc[0]], text[loc[1]:]
	}

	var b strings.Builder
	b.WriteString("## " + mentalHealthTitle + "\n\n")

	if questions != "" {
		b.WriteString("### PHQ-2 Screening\n\n")
		q := anyItem.ReplaceAllString(strings.TrimSpace(questions), "\n1. ")
		q = overItem.ReplaceAllString(q, "\n1. Over")
		q = secondItem.ReplaceAllString(q, "\n2. ")
		b.WriteString(q)
	}

	if coping != "" {
		b.WriteString("\n\n### Coping Strategies\n\n")
		c := anyItem.ReplaceAllString(strings.TrimSpace(coping), "\n1. ")
		for i, re := range copingItemsRe {
			c = re.ReplaceAllString(c, "\n"+string(rune('2'+i))+". ")
		}
		b.WriteString(c)
	}

	return strings.TrimSpace(b.String())
}

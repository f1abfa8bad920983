package model

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceCode = iota
	slashCode
	equalCode
	colonCode
	commaCode
	openParenCode
	closeParenCode
	nameCode
	segmentValueCode
	quotedCode
	paramValueCode
)

var (
	whitespaceToken   = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	slashToken        = parsly.NewToken(slashCode, "/", matcher.NewByte('/'))
	equalToken        = parsly.NewToken(equalCode, "=", matcher.NewByte('='))
	colonToken        = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	commaToken        = parsly.NewToken(commaCode, ",", matcher.NewByte(','))
	openParenToken    = parsly.NewToken(openParenCode, "(", matcher.NewByte('('))
	closeParenToken   = parsly.NewToken(closeParenCode, ")", matcher.NewByte(')'))
	nameToken         = parsly.NewToken(nameCode, "Name", &nameMatcher{})
	segmentValueToken = parsly.NewToken(segmentValueCode, "SegmentValue", &untilMatcher{terminators: "/:"})
	quotedToken       = parsly.NewToken(quotedCode, "Quoted", &quotedMatcher{})
	paramValueToken   = parsly.NewToken(paramValueCode, "ParamValue", &untilMatcher{terminators: ",)"})
)

// nameMatcher matches resource types, operation and parameter names.
type nameMatcher struct{}

func (m *nameMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '-' || c == '_' || c == '.' || c == '*' {
			matched++
			continue
		}
		break
	}
	return matched
}

// untilMatcher matches everything up to one of the terminators.
type untilMatcher struct {
	terminators string
}

func (m *untilMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
outer:
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		for j := 0; j < len(m.terminators); j++ {
			if input[i] == m.terminators[j] {
				break outer
			}
		}
		matched++
	}
	return matched
}

// quotedMatcher matches a double quoted string with backslash escapes.
type quotedMatcher struct{}

func (m *quotedMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != '"' {
		return 0
	}
	for i := pos + 1; i < cursor.InputSize; i++ {
		switch input[i] {
		case '\\':
			i++
		case '"':
			return i - pos + 1
		}
	}
	return 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

// ParseAddress parses a CLI address such as /subsystem=logging/logger=foo.
// An empty text or "/" is the root address.
func ParseAddress(text string) (Address, error) {
	cursor := parsly.NewCursor("", []byte(strings.TrimSpace(text)), 0)
	address, err := parseAddress(cursor)
	if err != nil {
		return nil, err
	}
	if cursor.HasMore() {
		return nil, fmt.Errorf("unexpected %q at %d in address %q", string(cursor.Input[cursor.Pos:]), cursor.Pos, text)
	}
	return address, nil
}

// ParseOperation parses a CLI operation such as
// /deployment=app.war:read-resource(include-runtime=true,recursive-depth=1).
// Parameter values true and false become booleans, integers become ints,
// quoted values are unquoted and anything else is kept as string.
func ParseOperation(text string) (*Operation, error) {
	cursor := parsly.NewCursor("", []byte(strings.TrimSpace(text)), 0)
	address, err := parseAddress(cursor)
	if err != nil {
		return nil, err
	}
	matched := cursor.MatchAfterOptional(whitespaceToken, colonToken)
	if matched.Code != colonToken.Code {
		return nil, cursor.NewError(colonToken)
	}
	matched = cursor.MatchOne(nameToken)
	if matched.Code != nameToken.Code {
		return nil, cursor.NewError(nameToken)
	}
	builder := NewBuilder(address, matched.Text(cursor))

	matched = cursor.MatchAfterOptional(whitespaceToken, openParenToken)
	if matched.Code == openParenToken.Code {
		if err = parseParams(cursor, builder); err != nil {
			return nil, err
		}
	}
	cursor.MatchOne(whitespaceToken)
	if cursor.HasMore() {
		return nil, fmt.Errorf("unexpected %q at %d in operation %q", string(cursor.Input[cursor.Pos:]), cursor.Pos, text)
	}
	return builder.Build(), nil
}

func parseAddress(cursor *parsly.Cursor) (Address, error) {
	address := Root()
	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, slashToken)
		if matched.Code != slashToken.Code {
			return address, nil
		}
		matched = cursor.MatchOne(nameToken)
		if matched.Code != nameToken.Code {
			if !cursor.HasMore() || cursor.Input[cursor.Pos] == ':' {
				return address, nil
			}
			return nil, cursor.NewError(nameToken)
		}
		key := matched.Text(cursor)
		matched = cursor.MatchOne(equalToken)
		if matched.Code != equalToken.Code {
			return nil, cursor.NewError(equalToken)
		}
		matched = cursor.MatchAny(quotedToken, segmentValueToken)
		switch matched.Code {
		case quotedToken.Code:
			address = address.Add(key, unquote(matched.Text(cursor)))
		case segmentValueToken.Code:
			address = address.Add(key, matched.Text(cursor))
		default:
			return nil, cursor.NewError(segmentValueToken)
		}
	}
}

func parseParams(cursor *parsly.Cursor, builder *Builder) error {
	matched := cursor.MatchAfterOptional(whitespaceToken, closeParenToken)
	if matched.Code == closeParenToken.Code {
		return nil
	}
	for {
		matched = cursor.MatchAfterOptional(whitespaceToken, nameToken)
		if matched.Code != nameToken.Code {
			return cursor.NewError(nameToken)
		}
		name := matched.Text(cursor)
		matched = cursor.MatchAfterOptional(whitespaceToken, equalToken)
		if matched.Code != equalToken.Code {
			return cursor.NewError(equalToken)
		}
		cursor.MatchOne(whitespaceToken)
		matched = cursor.MatchAny(quotedToken, paramValueToken)
		switch matched.Code {
		case quotedToken.Code:
			builder.Param(name, unquote(matched.Text(cursor)))
		case paramValueToken.Code:
			builder.Param(name, paramValue(strings.TrimSpace(matched.Text(cursor))))
		default:
			return cursor.NewError(paramValueToken)
		}
		matched = cursor.MatchAfterOptional(whitespaceToken, commaToken, closeParenToken)
		switch matched.Code {
		case commaToken.Code:
		case closeParenToken.Code:
			return nil
		default:
			return cursor.NewError(closeParenToken)
		}
	}
}

func paramValue(text string) interface{} {
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(text); err == nil {
		return i
	}
	return text
}

func unquote(text string) string {
	if ret, err := strconv.Unquote(text); err == nil {
		return ret
	}
	return strings.Trim(text, `"`)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package convention

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// headerLexer splits a commit subject into type, scope, breaking marker and
// description. The scope and description states accept free text.
var headerLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Word", Pattern: `[A-Za-z][A-Za-z0-9_-]*`},
		{Name: "ScopeOpen", Pattern: `\(`, Action: lexer.Push("Scope")},
		{Name: "Bang", Pattern: `!`},
		{Name: "Colon", Pattern: `:[ \t]*`, Action: lexer.Push("Description")},
	},
	"Scope": {
		{Name: "ScopeText", Pattern: `[^()\r\n]+`},
		{Name: "ScopeClose", Pattern: `\)`, Action: lexer.Pop()},
	},
	"Description": {
		{Name: "Rest", Pattern: `[^\r\n]+`},
	},
})

// Header is a parsed conventional-commit subject line.
//
// Grammar: type [ "(" scope ")" ] [ "!" ] ":" description
type Header struct {
	Type        string `parser:"@Word"`
	Scope       string `parser:"(ScopeOpen @ScopeText? ScopeClose)?"`
	Breaking    bool   `parser:"@Bang?"`
	Description string `parser:"Colon @Rest"`
}

// headerParser is the singleton participle parser instance.
var headerParser *participle.Parser[Header]

func init() {
	var err error
	headerParser, err = participle.Build[Header](participle.Lexer(headerLexer))
	if err != nil {
		panic(fmt.Sprintf("failed to build commit header parser: %v", err))
	}
}

// ParseHeader parses the subject line of a commit message.
func ParseHeader(subject string) (*Header, error) {
	header, err := headerParser.ParseString("", strings.TrimSpace(subject))
	if err != nil {
		return nil, oops.In("convention").
			With("subject", subject).
			Wrapf(err, "parsing conventional commit header")
	}
	header.Type = strings.ToLower(header.Type)
	header.Scope = strings.TrimSpace(header.Scope)
	header.Description = strings.TrimSpace(header.Description)
	return header, nil
}

// hasBreakingFooter reports whether any body line opens a breaking change
// footer.
func hasBreakingFooter(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "BREAKING CHANGE:") || strings.HasPrefix(line, "BREAKING-CHANGE:") {
			return true
		}
	}
	return false
}

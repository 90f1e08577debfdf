package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser turns CSS text into selectors built with Selector and Combine, so
// parsed selectors obey the same ordering and uniqueness rules as the ones
// built in code.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

type token struct {
	tt   css.TokenType
	data string
}

func (t token) is(tt css.TokenType, data string) bool {
	return t.tt == tt && t.data == data
}

// Parse collects every selector of every ruleset in the stylesheet,
// including rulesets nested in @media blocks, and rebuilds them.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Rules:    make([]Rule, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	p.parseRules(parser, sheet, "", false)
	return sheet
}

// parseRules consumes grammar until end of input or, when nested is set,
// until the end of enclosing @-rule block.
func (p *Parser) parseRules(parser *css.Parser, sheet *Stylesheet, media string, nested bool) {
	var pending [][]token

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return

		case css.EndAtRuleGrammar:
			if nested {
				return
			}

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			if atRule == "@media" {
				query := joinTokens(trimSpace(convertTokens(parser.Values())))
				p.log.Debug("Entering @media block", zap.String("query", query))
				p.parseRules(parser, sheet, query, true)
				continue
			}
			sheet.Warnings = append(sheet.Warnings, "skipped "+atRule+" block")
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			p.skipAtRuleBlock(parser)

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.QualifiedRuleGrammar:
			// one of the comma separated selectors, the last one comes with BeginRulesetGrammar
			pending = append(pending, p.selectorTokens(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			pending = append(pending, p.selectorTokens(data, parser.Values())...)
			for _, toks := range pending {
				sheet.Rules = append(sheet.Rules, p.rule(toks, media))
			}
			pending = nil
			p.skipDeclarations(parser)
		}
	}
}

func (p *Parser) rule(toks []token, media string) Rule {
	r := Rule{Raw: joinTokens(toks), Media: media}
	sel, err := p.build(toks)
	if err != nil {
		r.Err = err
		p.log.Debug("Invalid selector", zap.String("selector", r.Raw), zap.Error(err))
		return r
	}
	r.Selector = sel
	return r
}

// selectorTokens splits prelude of a ruleset into separate selectors by
// top level commas.
func (p *Parser) selectorTokens(data []byte, values []css.Token) [][]token {
	var all []token
	if len(data) > 0 {
		all = append(all, lexTokens(data)...)
	}
	all = append(all, convertTokens(values)...)

	var (
		groups [][]token
		cur    []token
		depth  int
	)
	for _, t := range all {
		switch t.tt {
		case css.LeftBracketToken, css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightBracketToken, css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				groups = append(groups, trimSpace(cur))
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
	groups = append(groups, trimSpace(cur))

	res := groups[:0]
	for _, g := range groups {
		if len(g) > 0 {
			res = append(res, g)
		}
	}
	return res
}

// skipDeclarations consumes grammar until the end of current ruleset.
func (p *Parser) skipDeclarations(parser *css.Parser) {
	for {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return
		}
	}
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// ParseSelector parses text of a single complex selector, e.g.
// `div#main > a[href$=".png"]:focus`, and replays it through the builder.
// Selector lists (comma separated) are not accepted.
func (p *Parser) ParseSelector(text string) (Fragment, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	f, err := p.build(trimSpace(toks))
	if err != nil {
		p.log.Debug("Invalid selector", zap.String("selector", text), zap.Error(err))
		return nil, err
	}
	return f, nil
}

// build converts token sequence into a fragment. Compound selectors are
// accumulated with Selector.Append, combinators fold them left to right with
// Combine.
func (p *Parser) build(toks []token) (Fragment, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty selector", ErrSyntax)
	}

	var (
		result     Fragment
		combinator string
		cur        Selector
		started    bool
	)
	join := func() {
		if result == nil {
			result = cur
		} else {
			result = Combine(result, combinator, cur)
		}
		cur, started = Selector{}, false
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.tt == css.WhitespaceToken || isCombinator(t):
			if !started {
				return nil, fmt.Errorf("%w: unexpected combinator %q", ErrSyntax, t.data)
			}
			comb, next := readCombinator(toks, i)
			if next >= len(toks) {
				return nil, fmt.Errorf("%w: dangling combinator %q", ErrSyntax, comb)
			}
			join()
			combinator = comb
			i = next - 1
			continue

		case t.tt == css.IdentToken || t.is(css.DelimToken, "*"):
			cur = cur.Element(t.data)

		case t.tt == css.HashToken:
			cur = cur.ID(strings.TrimPrefix(t.data, "#"))

		case t.is(css.DelimToken, "."):
			if i+1 >= len(toks) || toks[i+1].tt != css.IdentToken {
				return nil, fmt.Errorf("%w: class name expected after '.'", ErrSyntax)
			}
			i++
			cur = cur.Class(toks[i].data)

		case t.tt == css.LeftBracketToken:
			end := i + 1
			for end < len(toks) && toks[end].tt != css.RightBracketToken {
				end++
			}
			if end >= len(toks) {
				return nil, fmt.Errorf("%w: unterminated attribute selector", ErrSyntax)
			}
			spec := strings.TrimSpace(joinTokens(toks[i+1 : end]))
			if spec == "" {
				return nil, fmt.Errorf("%w: empty attribute selector", ErrSyntax)
			}
			cur = cur.Attr(spec)
			i = end

		case t.tt == css.ColonToken:
			kind := KindPseudoClass
			if i+1 < len(toks) && toks[i+1].tt == css.ColonToken {
				kind = KindPseudoElement
				i++
			}
			name, next, err := readPseudo(toks, i+1)
			if err != nil {
				return nil, err
			}
			cur = cur.Append(kind, name)
			i = next - 1

		case t.tt == css.CommaToken:
			return nil, fmt.Errorf("%w: selector lists are not supported", ErrSyntax)

		default:
			return nil, fmt.Errorf("%w: unexpected %s %q", ErrSyntax, t.tt, t.data)
		}

		started = true
		if err := cur.Err(); err != nil {
			return nil, err
		}
	}
	join()

	if err := result.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func isCombinator(t token) bool {
	return t.tt == css.DelimToken && (t.data == "+" || t.data == ">" || t.data == "~")
}

// readCombinator reads combinator with surrounding whitespace starting at
// position i and returns it with position of the first token after it.
// Whitespace alone is the descendant combinator.
func readCombinator(toks []token, i int) (string, int) {
	for i < len(toks) && toks[i].tt == css.WhitespaceToken {
		i++
	}
	if i < len(toks) && isCombinator(toks[i]) {
		comb := toks[i].data
		i++
		for i < len(toks) && toks[i].tt == css.WhitespaceToken {
			i++
		}
		return comb, i
	}
	return " ", i
}

// readPseudo reads pseudo-class or pseudo-element name at position i,
// functional notation is read up to the matching parenthesis.
func readPseudo(toks []token, i int) (string, int, error) {
	if i >= len(toks) {
		return "", i, fmt.Errorf("%w: pseudo selector name expected", ErrSyntax)
	}
	switch toks[i].tt {
	case css.IdentToken:
		return toks[i].data, i + 1, nil
	case css.FunctionToken:
		depth := 0
		for end := i; end < len(toks); end++ {
			switch toks[end].tt {
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
			case css.RightParenthesisToken:
				depth--
				if depth == 0 {
					return joinTokens(toks[i : end+1]), end + 1, nil
				}
			}
		}
		return "", i, fmt.Errorf("%w: unbalanced parentheses in %q", ErrSyntax, toks[i].data)
	default:
		return "", i, fmt.Errorf("%w: unexpected %s %q after ':'", ErrSyntax, toks[i].tt, toks[i].data)
	}
}

// lex tokenizes selector text dropping comments.
func lex(text string) ([]token, error) {
	l := css.NewLexer(parse.NewInput(strings.NewReader(text)))
	var toks []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
			}
			return toks, nil
		case css.CommentToken:
			continue
		}
		toks = append(toks, token{tt: tt, data: string(data)})
	}
}

func lexTokens(data []byte) []token {
	toks, _ := lex(string(data))
	return toks
}

func convertTokens(values []css.Token) []token {
	toks := make([]token, 0, len(values))
	for _, v := range values {
		if v.TokenType == css.CommentToken {
			continue
		}
		toks = append(toks, token{tt: v.TokenType, data: string(v.Data)})
	}
	return toks
}

func trimSpace(toks []token) []token {
	for len(toks) > 0 && toks[0].tt == css.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].tt == css.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// joinTokens restores text of the tokens, runs of whitespace become a single space.
func joinTokens(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		if t.tt == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(t.data)
	}
	return sb.String()
}

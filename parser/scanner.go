package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

type tok struct {
	kind ast.Kind
	// byte offsets into the source
	start, end int
	// identifier name, cooked string/template text, or the raw numeric literal
	text  string
	value float64
	// lineBefore is set when a line terminator precedes the token
	lineBefore bool
}

type scanner struct {
	src    string
	offset int
	tok    tok
	report func(start, end int, code diag.Code, args ...any)
}

func newScanner(src string, report func(start, end int, code diag.Code, args ...any)) *scanner {
	return &scanner{src: src, report: report}
}

func (s *scanner) peekByte(ahead int) byte {
	if s.offset+ahead < len(s.src) {
		return s.src[s.offset+ahead]
	}
	return 0
}

// skipTrivia skips whitespace and comments, and reports whether a line break was seen
func (s *scanner) skipTrivia() bool {
	lineBreak := false
	for s.offset < len(s.src) {
		c := s.src[s.offset]
		switch {
		case c == '\n' || c == '\r':
			lineBreak = true
			s.offset++
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			s.offset++
		case c == '/' && s.peekByte(1) == '/':
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.offset++
			}
		case c == '/' && s.peekByte(1) == '*':
			end := strings.Index(s.src[s.offset+2:], "*/")
			if end < 0 {
				s.report(s.offset, len(s.src), diag.TokenExpected, "*/")
				s.offset = len(s.src)
				break
			}
			if strings.ContainsAny(s.src[s.offset:s.offset+2+end], "\n\r") {
				lineBreak = true
			}
			s.offset += end + 4
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(s.src[s.offset:])
			if r == '\u2028' || r == '\u2029' {
				lineBreak = true
			} else if !unicode.IsSpace(r) && r != '\ufeff' {
				return lineBreak
			}
			s.offset += size
		default:
			return lineBreak
		}
	}
	return lineBreak
}

// next scans the next token into s.tok
func (s *scanner) next() {
	lineBreak := s.skipTrivia()
	s.tok = tok{start: s.offset, lineBefore: lineBreak}
	s.tok.kind = s.scan()
	s.tok.end = s.offset
}

// threeCharOps and twoCharOps are matched longest first
var threeCharOps = map[string]ast.Kind{
	"...": ast.KindDotDotDotToken,
	"===": ast.KindEqualsEqualsEqualsToken,
	"!==": ast.KindExclamationEqualsEqualsToken,
	"&&=": ast.KindAmpersandAmpersandEqualsToken,
	"||=": ast.KindBarBarEqualsToken,
	"??=": ast.KindQuestionQuestionEqualsToken,
}

var twoCharOps = map[string]ast.Kind{
	"==": ast.KindEqualsEqualsToken,
	"!=": ast.KindExclamationEqualsToken,
	"=>": ast.KindEqualsGreaterThanToken,
	"<=": ast.KindLessThanEqualsToken,
	"&&": ast.KindAmpersandAmpersandToken,
	"||": ast.KindBarBarToken,
	"??": ast.KindQuestionQuestionToken,
	"++": ast.KindPlusPlusToken,
	"--": ast.KindMinusMinusToken,
	"+=": ast.KindPlusEqualsToken,
	"-=": ast.KindMinusEqualsToken,
	"*=": ast.KindAsteriskEqualsToken,
	"/=": ast.KindSlashEqualsToken,
	"%=": ast.KindPercentEqualsToken,
}

var oneCharOps = map[byte]ast.Kind{
	'{': ast.KindOpenBraceToken,
	'}': ast.KindCloseBraceToken,
	'(': ast.KindOpenParenToken,
	')': ast.KindCloseParenToken,
	'[': ast.KindOpenBracketToken,
	']': ast.KindCloseBracketToken,
	'.': ast.KindDotToken,
	';': ast.KindSemicolonToken,
	',': ast.KindCommaToken,
	'<': ast.KindLessThanToken,
	'>': ast.KindGreaterThanToken,
	'+': ast.KindPlusToken,
	'-': ast.KindMinusToken,
	'*': ast.KindAsteriskToken,
	'/': ast.KindSlashToken,
	'%': ast.KindPercentToken,
	'&': ast.KindAmpersandToken,
	'|': ast.KindBarToken,
	'!': ast.KindExclamationToken,
	'?': ast.KindQuestionToken,
	':': ast.KindColonToken,
	'=': ast.KindEqualsToken,
	'@': ast.KindAtToken,
}

func (s *scanner) scan() ast.Kind {
	if s.offset >= len(s.src) {
		return ast.KindEndOfFile
	}
	c := s.src[s.offset]
	switch {
	case c == '"' || c == '\'':
		return s.scanString(c)
	case c == '`':
		s.offset++
		return s.scanTemplate(true)
	case isDigit(c) || (c == '.' && isDigit(s.peekByte(1))):
		return s.scanNumber()
	case c == '?' && s.peekByte(1) == '.' && !isDigit(s.peekByte(2)):
		s.offset += 2
		return ast.KindQuestionDotToken
	}
	if s.offset+3 <= len(s.src) {
		if k, ok := threeCharOps[s.src[s.offset:s.offset+3]]; ok {
			s.offset += 3
			return k
		}
	}
	if s.offset+2 <= len(s.src) {
		if k, ok := twoCharOps[s.src[s.offset:s.offset+2]]; ok {
			s.offset += 2
			return k
		}
	}
	if k, ok := oneCharOps[c]; ok {
		s.offset++
		return k
	}
	r, size := utf8.DecodeRuneInString(s.src[s.offset:])
	if isIdentifierStart(r) {
		return s.scanIdentifier()
	}
	s.report(s.offset, s.offset+size, diag.InvalidCharacter)
	s.offset += size
	return ast.KindUnknown
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentifierStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) ||
		r == '\u200c' || r == '\u200d'
}

func (s *scanner) scanIdentifier() ast.Kind {
	start := s.offset
	for s.offset < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.offset:])
		if !isIdentifierPart(r) {
			break
		}
		s.offset += size
	}
	s.tok.text = s.src[start:s.offset]
	if k, ok := ast.KeywordKind(s.tok.text); ok {
		return k
	}
	return ast.KindIdentifier
}

func (s *scanner) scanNumber() ast.Kind {
	start := s.offset
	if s.src[s.offset] == '0' && s.offset+1 < len(s.src) {
		base := 0
		switch s.src[s.offset+1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			s.offset += 2
			for s.offset < len(s.src) && (isHexDigit(s.src[s.offset]) || s.src[s.offset] == '_') {
				s.offset++
			}
			s.tok.text = s.src[start:s.offset]
			digits := strings.ReplaceAll(s.tok.text[2:], "_", "")
			v, err := strconv.ParseUint(digits, base, 64)
			if err != nil {
				s.report(start, s.offset, diag.InvalidNumericLiteral, s.tok.text)
			}
			s.tok.value = float64(v)
			return ast.KindNumericLiteral
		}
	}
	digits := func() {
		for s.offset < len(s.src) && (isDigit(s.src[s.offset]) || s.src[s.offset] == '_') {
			s.offset++
		}
	}
	digits()
	if s.offset < len(s.src) && s.src[s.offset] == '.' {
		s.offset++
		digits()
	}
	if s.offset < len(s.src) && (s.src[s.offset] == 'e' || s.src[s.offset] == 'E') {
		s.offset++
		if s.offset < len(s.src) && (s.src[s.offset] == '+' || s.src[s.offset] == '-') {
			s.offset++
		}
		digits()
	}
	s.tok.text = s.src[start:s.offset]
	v, err := strconv.ParseFloat(strings.ReplaceAll(s.tok.text, "_", ""), 64)
	if err != nil {
		s.report(start, s.offset, diag.InvalidNumericLiteral, s.tok.text)
	}
	s.tok.value = v
	return ast.KindNumericLiteral
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (s *scanner) scanString(quote byte) ast.Kind {
	start := s.offset
	s.offset++
	sb := &strings.Builder{}
	for {
		if s.offset >= len(s.src) || s.src[s.offset] == '\n' || s.src[s.offset] == '\r' {
			s.report(start, s.offset, diag.UnterminatedStringLiteral)
			break
		}
		c := s.src[s.offset]
		if c == quote {
			s.offset++
			break
		}
		if c == '\\' {
			s.scanEscape(sb)
			continue
		}
		sb.WriteByte(c)
		s.offset++
	}
	s.tok.text = sb.String()
	return ast.KindStringLiteral
}

// scanTemplate scans template text up to the closing backtick or the next
// substitution. head is set when the scan starts right after the opening backtick.
func (s *scanner) scanTemplate(head bool) ast.Kind {
	start := s.offset
	sb := &strings.Builder{}
	for {
		if s.offset >= len(s.src) {
			s.report(start, s.offset, diag.UnterminatedTemplate)
			s.tok.text = sb.String()
			if head {
				return ast.KindNoSubstitutionTemplateLiteral
			}
			return ast.KindTemplateTail
		}
		c := s.src[s.offset]
		switch {
		case c == '`':
			s.offset++
			s.tok.text = sb.String()
			if head {
				return ast.KindNoSubstitutionTemplateLiteral
			}
			return ast.KindTemplateTail
		case c == '$' && s.peekByte(1) == '{':
			s.offset += 2
			s.tok.text = sb.String()
			if head {
				return ast.KindTemplateHead
			}
			return ast.KindTemplateMiddle
		case c == '\\':
			s.scanEscape(sb)
		default:
			sb.WriteByte(c)
			s.offset++
		}
	}
}

// rescanTemplateContinuation rescans a `}` token as the middle or tail of a template
func (s *scanner) rescanTemplateContinuation() {
	s.offset = s.tok.start + 1
	s.tok.kind = s.scanTemplate(false)
	s.tok.end = s.offset
}

func (s *scanner) scanEscape(sb *strings.Builder) {
	start := s.offset
	s.offset++
	if s.offset >= len(s.src) {
		return
	}
	c := s.src[s.offset]
	s.offset++
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\r':
		if s.offset < len(s.src) && s.src[s.offset] == '\n' {
			s.offset++
		}
	case '\n':
	case 'x':
		s.scanHexEscape(sb, start, 2)
	case 'u':
		if s.offset < len(s.src) && s.src[s.offset] == '{' {
			end := strings.IndexByte(s.src[s.offset:], '}')
			if end < 0 {
				s.report(start, s.offset, diag.InvalidCharacter)
				return
			}
			v, err := strconv.ParseUint(s.src[s.offset+1:s.offset+end], 16, 32)
			if err != nil {
				s.report(start, s.offset+end+1, diag.InvalidCharacter)
			}
			sb.WriteRune(rune(v))
			s.offset += end + 1
			return
		}
		s.scanHexEscape(sb, start, 4)
	default:
		sb.WriteByte(c)
	}
}

func (s *scanner) scanHexEscape(sb *strings.Builder, start, n int) {
	if s.offset+n > len(s.src) {
		s.report(start, len(s.src), diag.InvalidCharacter)
		s.offset = len(s.src)
		return
	}
	v, err := strconv.ParseUint(s.src[s.offset:s.offset+n], 16, 32)
	if err != nil {
		s.report(start, s.offset+n, diag.InvalidCharacter)
	}
	sb.WriteRune(rune(v))
	s.offset += n
}

// rescanGreaterThan joins a `>` token with a directly following `=`. The
// scanner never produces `>=` itself so that `>` can close type argument lists.
func (s *scanner) rescanGreaterThan() {
	if s.tok.kind == ast.KindGreaterThanToken && s.tok.end < len(s.src) && s.src[s.tok.end] == '=' {
		s.tok.kind = ast.KindGreaterThanEqualsToken
		s.tok.end++
		s.offset = s.tok.end
	}
}

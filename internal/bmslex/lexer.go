// Package bmslex splits decoded BMS source text into a flat token stream.
// It never fails: lines that do not start with '#' become KindNotACommand
// tokens, and recoverable oddities (an odd-length message payload) are
// collected as LexWarning diagnostics.
package bmslex

import (
	"strings"
	"unicode"

	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/token"
)

// Lexer tokenizes one decoded BMS source file line by line.
type Lexer struct {
	source []string // pre-split lines, newline stripped
	diags  []diag.Diagnostic
}

func New(source string) *Lexer {
	return &Lexer{source: splitLines(source)}
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// controlKeywords maps a case-folded directive name to its token.Kind.
var controlKeywords = map[string]token.Kind{
	"RANDOM":     token.KindRandom,
	"SETRANDOM":  token.KindSetRandom,
	"IF":         token.KindIf,
	"ELSEIF":     token.KindElseIf,
	"ELSE":       token.KindElse,
	"ENDIF":      token.KindEndIf,
	"ENDRANDOM":  token.KindEndRandom,
	"SWITCH":     token.KindSwitch,
	"SETSWITCH":  token.KindSetSwitch,
	"CASE":       token.KindCase,
	"DEF":        token.KindDef,
	"SKIP":       token.KindSkip,
	"ENDSW":      token.KindEndSwitch,
	"ENDSWITCH":  token.KindEndSwitch,
}

// Tokenize lexes the whole source and returns the flat token stream plus any
// warnings collected along the way. It never returns an error.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var toks []token.Token
	for i, line := range l.source {
		row := i + 1
		tok, ok := l.lexLine(line, row)
		if ok {
			toks = append(toks, tok)
		}
	}
	return toks, l.diags
}

func (l *Lexer) warn(code, msg string, row, col int) {
	l.diags = append(l.diags, diag.Warn(diag.StageLex, diag.CategoryLexWarning, code, msg, diag.Range{Line: row, Col: col}))
}

// lexLine returns (token, true) unless the line carries no semantic content
// at all (pure blank line), in which case it returns (zero, false).
func (l *Lexer) lexLine(line string, row int) (token.Token, bool) {
	trimmed := strings.TrimRight(line, " \t")
	leading := len(line) - len(strings.TrimLeft(line, " \t"))

	firstNonSpace := strings.TrimLeft(trimmed, " \t")
	if firstNonSpace == "" {
		return token.Token{}, false
	}
	if firstNonSpace[0] != '#' {
		return token.Token{
			Kind:  token.KindNotACommand,
			Text:  line,
			Range: diag.Range{Line: row, Col: 1},
		}, true
	}

	body := firstNonSpace[1:]
	col := leading + 1

	// Split name from args on first whitespace or ':'.
	nameEnd := len(body)
	for i, r := range body {
		if unicode.IsSpace(r) || r == ':' {
			nameEnd = i
			break
		}
	}
	name := body[:nameEnd]
	rest := body[nameEnd:]

	// Message form: TTTCC followed by ':'.
	if isMessageName(name) && strings.HasPrefix(rest, ":") {
		track, channel := parseMessageName(name)
		payload := rest[1:]
		if len(payload)%2 != 0 {
			l.warn("E_LEX_ODD_PAYLOAD", "message payload has odd length, truncating last byte", row, col)
			payload = payload[:len(payload)-1]
		}
		return token.Token{
			Kind:    token.KindMessage,
			Name:    name,
			Track:   track,
			Channel: channel,
			Payload: strings.TrimRight(payload, " \t"),
			Range:   diag.Range{Line: row, Col: col},
		}, true
	}

	args := strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	upper := strings.ToUpper(name)
	if kind, ok := controlKeywords[upper]; ok {
		return token.Token{Kind: kind, Name: upper, Args: args, Range: diag.Range{Line: row, Col: col}}, true
	}

	return token.Token{Kind: token.KindHeader, Name: name, Args: args, Range: diag.Range{Line: row, Col: col}}, true
}

// isMessageName reports whether name looks like TTTCC: three ASCII digits
// followed by two base-62 characters.
func isMessageName(name string) bool {
	if len(name) != 5 {
		return false
	}
	for i := 0; i < 3; i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	for i := 3; i < 5; i++ {
		c := name[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

func parseMessageName(name string) (track int, channel string) {
	track = int(name[0]-'0')*100 + int(name[1]-'0')*10 + int(name[2]-'0')
	channel = strings.ToUpper(name[3:5])
	return
}

package textract

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// tjSpaceThreshold is the TJ kerning adjustment (thousandths of an em) past
// which a word gap is assumed.
const tjSpaceThreshold = -200

// extractPDF returns the text of every page, one output line per text line.
func extractPDF(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil || len(content) == 0 {
			continue
		}
		if text := contentText(content); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// contentText interprets the text operators of a page content stream.
// Positioning operators that move to a new line emit a line break so that
// line-oriented parsing keeps working on the result.
func contentText(content []byte) string {
	var (
		sb       strings.Builder
		operands []token
		lastY    *float64
	)
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	space := func() {
		s := sb.String()
		if sb.Len() > 0 && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			sb.WriteByte(' ')
		}
	}
	lastString := func() (string, bool) {
		for i := len(operands) - 1; i >= 0; i-- {
			if operands[i].kind == tokString {
				return operands[i].text, true
			}
		}
		return "", false
	}
	number := func(fromEnd int) float64 {
		i := len(operands) - fromEnd
		if i < 0 || operands[i].kind != tokNumber {
			return 0
		}
		return operands[i].num
	}

	lx := lexer{data: content}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			if s, ok := lastString(); ok {
				sb.WriteString(s)
			}
		case "'", `"`:
			newline()
			if s, ok := lastString(); ok {
				sb.WriteString(s)
			}
		case "TJ":
			for _, op := range operands {
				switch op.kind {
				case tokString:
					sb.WriteString(op.text)
				case tokNumber:
					if op.num < tjSpaceThreshold {
						space()
					}
				}
			}
		case "Td", "TD":
			if number(1) != 0 {
				newline()
			} else {
				space()
			}
		case "T*":
			newline()
		case "Tm":
			y := number(1)
			if lastY != nil && *lastY != y {
				newline()
			} else {
				space()
			}
			lastY = &y
		case "BT":
			lastY = nil
		case "ET":
			newline()
		}
		operands = operands[:0]
	}
	return strings.TrimSpace(sb.String())
}

type tokenKind int

const (
	tokOperator tokenKind = iota
	tokString
	tokNumber
	tokOther
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// lexer splits a content stream into operands and operators. Array brackets
// are dropped so that TJ sees its elements as plain operands.
type lexer struct {
	data []byte
	pos  int
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c) || c == '[' || c == ']':
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			return token{kind: tokString, text: l.literal()}, true
		case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
			l.pos += 2
			return token{kind: tokOther, text: "<<"}, true
		case c == '>' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '>':
			l.pos += 2
			return token{kind: tokOther, text: ">>"}, true
		case c == '<':
			return token{kind: tokString, text: l.hex()}, true
		case c == '/':
			start := l.pos
			l.pos++
			l.word()
			return token{kind: tokOther, text: string(l.data[start:l.pos])}, true
		default:
			start := l.pos
			l.word()
			if l.pos == start {
				l.pos++
				continue
			}
			w := string(l.data[start:l.pos])
			if n, err := strconv.ParseFloat(w, 64); err == nil {
				return token{kind: tokNumber, text: w, num: n}, true
			}
			return token{kind: tokOperator, text: w}, true
		}
	}
	return token{}, false
}

func (l *lexer) word() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isPDFSpace(c) || strings.IndexByte("()<>[]{}/%", c) >= 0 {
			return
		}
		l.pos++
	}
}

// literal reads a (...) string with balanced parentheses and escapes.
func (l *lexer) literal() string {
	var sb strings.Builder
	depth := 0
	l.pos++ // opening paren
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return sb.String()
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; k++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			if depth == 0 {
				return sb.String()
			}
			depth--
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// hex reads a <...> string.
func (l *lexer) hex() string {
	l.pos++ // opening bracket
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // closing bracket
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return string(out)
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

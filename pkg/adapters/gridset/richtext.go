package gridset

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode"
)

// Grid 3 stores spoken and inserted text as <p><s><r>word</r></s>...</p>, one
// <s> per word or space, with optional formatting attributes on each <s>.

type richDoc struct {
	Text string  `xml:",chardata"`
	P    []richP `xml:"p"`
	S    []richS `xml:"s"`
}

type richP struct {
	S []richS `xml:"s"`
}

type richS struct {
	Attrs []xml.Attr `xml:",any,attr"`
	R     []string   `xml:"r"`
}

func parseRich(inner string) (*richDoc, error) {
	var doc richDoc
	if err := xml.Unmarshal([]byte("<v>"+inner+"</v>"), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *richDoc) runs() []richS {
	var out []richS
	for _, p := range d.P {
		out = append(out, p.S...)
	}
	return append(out, d.S...)
}

// isRich reports whether a parameter body uses the <p>/<s> markup.
func isRich(inner string) bool {
	doc, err := parseRich(inner)
	return err == nil && len(doc.runs()) > 0
}

// plainText decodes a parameter body: rich bodies are flattened (non-blank runs
// joined by single spaces), plain bodies are unescaped. Undecodable bodies are
// returned as-is.
func plainText(inner string) string {
	doc, err := parseRich(inner)
	if err != nil {
		return strings.TrimSpace(inner)
	}
	runs := doc.runs()
	if len(runs) == 0 {
		return strings.TrimSpace(doc.Text)
	}
	var words []string
	for _, s := range runs {
		for _, r := range s.R {
			if w := strings.TrimSpace(r); w != "" {
				words = append(words, w)
			}
		}
	}
	return strings.Join(words, " ")
}

// richAttrs returns the attribute set of each <s> in order.
func richAttrs(inner string) [][]xml.Attr {
	doc, err := parseRich(inner)
	if err != nil {
		return nil
	}
	var attrs [][]xml.Attr
	for _, s := range doc.runs() {
		attrs = append(attrs, s.Attrs)
	}
	return attrs
}

// buildRich renders text as rich markup, one <s> per word or single space.
// attrs[i] is copied onto the i-th <s>.
func buildRich(text string, attrs [][]xml.Attr) string {
	var parts []string
	var word strings.Builder
	for _, r := range text {
		if unicode.IsSpace(r) {
			if word.Len() > 0 {
				parts = append(parts, word.String(), " ")
				word.Reset()
			} else if len(parts) == 0 || parts[len(parts)-1] != " " {
				parts = append(parts, " ")
			}
			continue
		}
		word.WriteRune(r)
	}
	if word.Len() > 0 {
		parts = append(parts, word.String())
	}

	var b strings.Builder
	b.WriteString("<p>")
	for i, part := range parts {
		b.WriteString("<s")
		if i < len(attrs) {
			for _, a := range attrs[i] {
				b.WriteString(" " + a.Name.Local + `="` + escape(a.Value) + `"`)
			}
		}
		b.WriteString("><r>")
		if part == " " {
			b.WriteString("<![CDATA[ ]]>")
		} else {
			b.WriteString(escape(part))
		}
		b.WriteString("</r></s>")
	}
	b.WriteString("</p>")
	return b.String()
}

// rewriteText replaces the text of a parameter body, keeping its form (rich or
// plain) and its per-run attributes. The body is returned untouched when the
// text did not change.
func rewriteText(inner, text string) string {
	if plainText(inner) == text {
		return inner
	}
	if isRich(inner) {
		return buildRich(text, richAttrs(inner))
	}
	return escape(text)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

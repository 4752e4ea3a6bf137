package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

var (
	// ErrInvalidPdf covers any structural parse failure.
	ErrInvalidPdf = errors.New("invalid PDF file")
	// ErrEncrypted marks encrypted inputs, which are not supported.
	ErrEncrypted = errors.New("encrypted PDF is not supported")
)

// Load parses a PDF file from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

var headerRe = regexp.MustCompile(`%PDF-(\d+\.\d+)`)

// objRe finds indirect object headers. Matches inside stream data are ruled
// out by walking matches in offset order and skipping any that start before
// the end of the previously parsed object.
var objRe = regexp.MustCompile(`(?s)(\d+)\s+(\d+)\s+obj\b`)

var trailerRe = regexp.MustCompile(`trailer`)

// Parse builds a Document from raw bytes. The whole object graph is loaded;
// xref tables are ignored in favor of a full object scan, which also
// tolerates files with broken offsets.
func Parse(data []byte) (*Document, error) {
	hm := headerRe.FindSubmatch(data)
	if hm == nil {
		return nil, fmt.Errorf("%w: missing %%PDF header", ErrInvalidPdf)
	}
	doc := NewDocument(string(hm[1]))

	matches := objRe.FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no objects found", ErrInvalidPdf)
	}
	consumedUpTo := 0
	for _, m := range matches {
		if m[0] < consumedUpTo {
			continue // header-looking bytes inside a previous object's stream
		}
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		p := &parser{data: data, pos: m[1]}
		obj, err := p.parseIndirect()
		if err != nil {
			// a single corrupt object does not sink the file; the merger
			// only needs the reachable graph
			continue
		}
		doc.Set(ObjectID{Number: num, Generation: gen}, obj)
		consumedUpTo = p.pos
	}
	if len(doc.Objects) == 0 {
		return nil, fmt.Errorf("%w: no parseable objects", ErrInvalidPdf)
	}

	doc.Trailer = collectTrailer(data, doc)
	if _, encrypted := doc.Trailer.Get("Encrypt"); encrypted {
		return nil, ErrEncrypted
	}
	if err := expandObjectStreams(doc); err != nil {
		return nil, err
	}
	dropStructuralObjects(doc)
	if _, ok := doc.Trailer.GetReference("Root"); !ok {
		return nil, fmt.Errorf("%w: trailer has no Root", ErrInvalidPdf)
	}
	return doc, nil
}

// collectTrailer merges every trailer dictionary (newest last in the file,
// so reverse order lets the newest value win) and falls back to xref-stream
// dictionaries for files without a classic trailer.
func collectTrailer(data []byte, doc *Document) *Dictionary {
	trailer := NewDictionary()
	locs := trailerRe.FindAllIndex(data, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		p := &parser{data: data, pos: locs[i][1]}
		p.skipWS()
		obj, err := p.parseValue()
		if err != nil {
			continue
		}
		if d, ok := obj.(*Dictionary); ok {
			for _, k := range d.Keys() {
				if _, exists := trailer.Get(k); !exists {
					v, _ := d.Get(k)
					trailer.Set(k, v)
				}
			}
		}
	}
	if _, ok := trailer.Get("Root"); !ok {
		for _, id := range SortedIDs(doc.Objects) {
			if TypeName(doc.Objects[id]) != "XRef" {
				continue
			}
			d, _ := DictOf(doc.Objects[id])
			for _, k := range []Name{"Root", "Info", "Encrypt", "Size"} {
				if v, has := d.Get(k); has {
					if _, exists := trailer.Get(k); !exists {
						trailer.Set(k, v)
					}
				}
			}
		}
	}
	return trailer
}

// expandObjectStreams unpacks /Type /ObjStm containers so every object is
// directly addressable. Already-present ids win over packed copies.
func expandObjectStreams(doc *Document) error {
	for _, id := range SortedIDs(doc.Objects) {
		stream, ok := doc.Objects[id].(*Stream)
		if !ok || TypeName(stream) != "ObjStm" {
			continue
		}
		decoded, err := decodeStream(stream)
		if err != nil {
			return fmt.Errorf("%w: object stream %s: %v", ErrInvalidPdf, id, err)
		}
		n, _ := stream.Dict.GetInt("N")
		first, _ := stream.Dict.GetInt("First")
		hp := &parser{data: decoded, pos: 0}
		type packed struct{ num, off int }
		entries := make([]packed, 0, n)
		for i := int64(0); i < n; i++ {
			num, err1 := hp.parseInt()
			off, err2 := hp.parseInt()
			if err1 != nil || err2 != nil {
				return fmt.Errorf("%w: object stream header", ErrInvalidPdf)
			}
			entries = append(entries, packed{num: int(num), off: int(off)})
		}
		for _, e := range entries {
			pos := int(first) + e.off
			if pos < 0 || pos >= len(decoded) {
				continue
			}
			op := &parser{data: decoded, pos: pos}
			obj, err := op.parseValue()
			if err != nil {
				continue
			}
			pid := ObjectID{Number: e.num}
			if _, exists := doc.Objects[pid]; !exists {
				doc.Set(pid, obj)
			}
		}
	}
	return nil
}

// dropStructuralObjects removes xref streams and emptied object streams;
// they describe the file layout being discarded, not document content.
func dropStructuralObjects(doc *Document) {
	for id, obj := range doc.Objects {
		switch TypeName(obj) {
		case "XRef", "ObjStm":
			delete(doc.Objects, id)
		}
	}
}

// decodeStream undoes the stream's filter chain. Only FlateDecode is needed
// for structural streams; anything else is left to the consumer.
func decodeStream(s *Stream) ([]byte, error) {
	filter, ok := s.Dict.Get("Filter")
	if !ok {
		return s.Data, nil
	}
	var filters []Name
	switch f := filter.(type) {
	case Name:
		filters = []Name{f}
	case Array:
		for _, item := range f {
			if n, ok := item.(Name); ok {
				filters = append(filters, n)
			}
		}
	}
	data := s.Data
	for _, f := range filters {
		if f != "FlateDecode" {
			return nil, fmt.Errorf("unsupported filter %s", f)
		}
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		decoded, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			return nil, err
		}
		data = decoded
	}
	return data, nil
}

// parser is a recursive-descent reader over raw bytes.
type parser struct {
	data []byte
	pos  int
}

func isWhitespace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (p *parser) skipWS() {
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) {
			p.pos++
			continue
		}
		if b == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.data) {
		return p.data[p.pos]
	}
	return 0
}

func (p *parser) hasKeyword(kw string) bool {
	if p.pos+len(kw) > len(p.data) {
		return false
	}
	if !bytes.Equal(p.data[p.pos:p.pos+len(kw)], []byte(kw)) {
		return false
	}
	end := p.pos + len(kw)
	if end < len(p.data) && !isWhitespace(p.data[end]) && !isDelimiter(p.data[end]) {
		return false
	}
	p.pos = end
	return true
}

// parseIndirect reads the body of an "N G obj" and, when followed by a
// stream keyword, the stream data.
func (p *parser) parseIndirect() (Object, error) {
	p.skipWS()
	obj, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	dict, isDict := obj.(*Dictionary)
	if isDict && p.hasKeyword("stream") {
		return p.parseStreamData(dict)
	}
	p.hasKeyword("endobj")
	return obj, nil
}

func (p *parser) parseStreamData(dict *Dictionary) (Object, error) {
	// keyword is followed by CRLF or LF; data starts right after
	if p.peek() == '\r' {
		p.pos++
	}
	if p.peek() == '\n' {
		p.pos++
	}
	start := p.pos
	if length, ok := dict.GetInt("Length"); ok {
		end := start + int(length)
		if end <= len(p.data) {
			rest := &parser{data: p.data, pos: end}
			rest.skipWS()
			if rest.hasKeyword("endstream") {
				p.pos = rest.pos
				p.skipWS()
				p.hasKeyword("endobj")
				return &Stream{Dict: dict, Data: p.data[start:end]}, nil
			}
		}
		// declared length does not line up; fall through to the search
	}
	idx := bytes.Index(p.data[start:], []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: unterminated stream", ErrInvalidPdf)
	}
	end := start + idx
	// drop the EOL the writer put before endstream
	for end > start && (p.data[end-1] == '\n' || p.data[end-1] == '\r') {
		end--
	}
	p.pos = start + idx
	p.hasKeyword("endstream")
	p.skipWS()
	p.hasKeyword("endobj")
	return &Stream{Dict: dict, Data: p.data[start:end]}, nil
}

func (p *parser) parseValue() (Object, error) {
	p.skipWS()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("%w: unexpected end of data", ErrInvalidPdf)
	}
	switch b := p.data[p.pos]; {
	case b == '<':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
			return p.parseDictionary()
		}
		return p.parseHexString()
	case b == '[':
		return p.parseArray()
	case b == '(':
		return p.parseLiteralString()
	case b == '/':
		return p.parseName()
	case b == 't':
		if p.hasKeyword("true") {
			return Boolean(true), nil
		}
	case b == 'f':
		if p.hasKeyword("false") {
			return Boolean(false), nil
		}
	case b == 'n':
		if p.hasKeyword("null") {
			return Null{}, nil
		}
	case b >= '0' && b <= '9', b == '+', b == '-', b == '.':
		return p.parseNumberOrReference()
	}
	return nil, fmt.Errorf("%w: unexpected byte %q at %d", ErrInvalidPdf, p.data[p.pos], p.pos)
}

func (p *parser) parseDictionary() (Object, error) {
	p.pos += 2 // <<
	dict := NewDictionary()
	for {
		p.skipWS()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.peek() != '/' {
			return nil, fmt.Errorf("%w: dictionary key is not a name at %d", ErrInvalidPdf, p.pos)
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict.Set(key.(Name), value)
	}
}

func (p *parser) parseArray() (Object, error) {
	p.pos++ // [
	arr := Array{}
	for {
		p.skipWS()
		if p.peek() == ']' {
			p.pos++
			return arr, nil
		}
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, item)
	}
}

func (p *parser) parseName() (Object, error) {
	p.pos++ // /
	var out []byte
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		if b == '#' && p.pos+2 < len(p.data) {
			hi, err1 := hexVal(p.data[p.pos+1])
			lo, err2 := hexVal(p.data[p.pos+2])
			if err1 == nil && err2 == nil {
				out = append(out, hi<<4|lo)
				p.pos += 3
				continue
			}
		}
		out = append(out, b)
		p.pos++
	}
	return Name(out), nil
}

func hexVal(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	}
	return 0, fmt.Errorf("not a hex digit: %q", b)
}

func (p *parser) parseLiteralString() (Object, error) {
	p.pos++ // (
	var out []byte
	depth := 1
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		switch b {
		case '\\':
			p.pos++
			if p.pos >= len(p.data) {
				break
			}
			e := p.data[p.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\n':
				// line continuation
			case '\r':
				if p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
					p.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && p.pos+1 < len(p.data); k++ {
						n := p.data[p.pos+1]
						if n < '0' || n > '7' {
							break
						}
						val = val*8 + int(n-'0')
						p.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
			p.pos++
		case '(':
			depth++
			out = append(out, b)
			p.pos++
		case ')':
			depth--
			p.pos++
			if depth == 0 {
				return String{Data: out}, nil
			}
			out = append(out, b)
		default:
			out = append(out, b)
			p.pos++
		}
	}
	return nil, fmt.Errorf("%w: unterminated string", ErrInvalidPdf)
}

func (p *parser) parseHexString() (Object, error) {
	p.pos++ // <
	var out []byte
	var hi *byte
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b == '>' {
			p.pos++
			if hi != nil {
				out = append(out, *hi<<4)
			}
			return String{Data: out, Hex: true}, nil
		}
		if v, err := hexVal(b); err == nil {
			if hi == nil {
				hi = &v
			} else {
				out = append(out, *hi<<4|v)
				hi = nil
			}
		}
		p.pos++
	}
	return nil, fmt.Errorf("%w: unterminated hex string", ErrInvalidPdf)
}

func (p *parser) parseInt() (int64, error) {
	p.skipWS()
	start := p.pos
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if (b >= '0' && b <= '9') || b == '+' || b == '-' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return 0, fmt.Errorf("%w: expected integer at %d", ErrInvalidPdf, p.pos)
	}
	return strconv.ParseInt(string(p.data[start:p.pos]), 10, 64)
}

// parseNumberOrReference reads a number, upgrading "N G R" to a reference.
func (p *parser) parseNumberOrReference() (Object, error) {
	start := p.pos
	isReal := false
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if b >= '0' && b <= '9' || b == '+' || b == '-' {
			p.pos++
			continue
		}
		if b == '.' {
			isReal = true
			p.pos++
			continue
		}
		break
	}
	token := string(p.data[start:p.pos])
	if isReal {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrInvalidPdf, token)
		}
		return Real(f), nil
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad number %q", ErrInvalidPdf, token)
	}
	// lookahead for "G R"
	save := p.pos
	p.skipWS()
	genStart := p.pos
	for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
	}
	if p.pos > genStart {
		gen, genErr := strconv.Atoi(string(p.data[genStart:p.pos]))
		p.skipWS()
		if genErr == nil && p.hasKeyword("R") {
			return Reference(ObjectID{Number: int(n), Generation: gen}), nil
		}
	}
	p.pos = save
	return Integer(n), nil
}

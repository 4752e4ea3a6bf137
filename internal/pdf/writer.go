package pdf

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"strconv"
)

// Save writes the document to path, overwriting any existing file. Objects
// are emitted in increasing id order with a classic xref table.
func (doc *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := doc.write(w); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteBytes renders the document into memory instead of a file.
func (doc *Document) WriteBytes() ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := doc.write(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w *bufio.Writer
	n int
}

func (c *countingWriter) WriteString(s string) {
	n, _ := c.w.WriteString(s)
	c.n += n
}

func (c *countingWriter) Write(b []byte) {
	n, _ := c.w.Write(b)
	c.n += n
}

func (doc *Document) write(bw *bufio.Writer) error {
	w := &countingWriter{w: bw}
	w.WriteString("%PDF-" + doc.Version + "\n")
	// binary comment keeps transfer tools honest about the file type
	w.Write([]byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'})

	offsets := map[int]int{}
	maxNum := 0
	for _, id := range SortedIDs(doc.Objects) {
		offsets[id.Number] = w.n
		if id.Number > maxNum {
			maxNum = id.Number
		}
		w.WriteString(strconv.Itoa(id.Number))
		w.WriteString(" ")
		w.WriteString(strconv.Itoa(id.Generation))
		w.WriteString(" obj\n")
		writeObject(w, doc.Objects[id])
		w.WriteString("\nendobj\n")
	}

	xrefStart := w.n
	w.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", maxNum+1))
	for i := 1; i <= maxNum; i++ {
		if off, ok := offsets[i]; ok {
			w.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
		} else {
			w.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := doc.Trailer.Clone()
	trailer.Set("Size", Integer(maxNum+1))
	w.WriteString("trailer\n")
	writeObject(w, trailer)
	w.WriteString(fmt.Sprintf("\nstartxref\n%d\n%%%%EOF\n", xrefStart))
	return nil
}

func writeObject(w *countingWriter, o Object) {
	switch v := o.(type) {
	case nil, Null:
		w.WriteString("null")
	case Boolean:
		if v {
			w.WriteString("true")
		} else {
			w.WriteString("false")
		}
	case Integer:
		w.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		w.WriteString(formatReal(float64(v)))
	case Name:
		w.WriteString("/")
		writeNameBytes(w, string(v))
	case String:
		if v.Hex {
			w.WriteString("<")
			for _, b := range v.Data {
				w.WriteString(fmt.Sprintf("%02X", b))
			}
			w.WriteString(">")
		} else {
			w.WriteString("(")
			w.Write(escapeLiteral(v.Data))
			w.WriteString(")")
		}
	case Reference:
		w.WriteString(fmt.Sprintf("%d %d R", v.Number, v.Generation))
	case Array:
		w.WriteString("[")
		for i, item := range v {
			if i > 0 {
				w.WriteString(" ")
			}
			writeObject(w, item)
		}
		w.WriteString("]")
	case *Dictionary:
		writeDict(w, v)
	case *Stream:
		dict := v.Dict.Clone()
		dict.Set("Length", Integer(len(v.Data)))
		writeDict(w, dict)
		w.WriteString("\nstream\n")
		w.Write(v.Data)
		w.WriteString("\nendstream")
	}
}

func writeDict(w *countingWriter, d *Dictionary) {
	w.WriteString("<<")
	for _, k := range d.Keys() {
		w.WriteString(" /")
		writeNameBytes(w, string(k))
		w.WriteString(" ")
		v, _ := d.Get(k)
		writeObject(w, v)
	}
	w.WriteString(" >>")
}

// writeNameBytes escapes delimiters and non-regular bytes as #xx.
func writeNameBytes(w *countingWriter, name string) {
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b <= ' ' || b > '~' || isDelimiter(b) || b == '#' {
			w.WriteString(fmt.Sprintf("#%02X", b))
			continue
		}
		w.Write([]byte{b})
	}
}

func escapeLiteral(data []byte) []byte {
	var out []byte
	for _, b := range data {
		switch b {
		case '(', ')', '\\':
			out = append(out, '\\', b)
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, b)
		}
	}
	return out
}

// formatReal prints a float without an exponent, as PDF requires.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// Compress flate-encodes every unfiltered stream that shrinks from it.
// Already-filtered streams (images, packed content) are left untouched.
func (doc *Document) Compress() {
	for id, obj := range doc.Objects {
		stream, ok := obj.(*Stream)
		if !ok {
			continue
		}
		if _, filtered := stream.Dict.Get("Filter"); filtered {
			continue
		}
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(stream.Data); err != nil {
			_ = zw.Close()
			continue
		}
		if err := zw.Close(); err != nil {
			continue
		}
		if buf.Len() >= len(stream.Data) {
			continue
		}
		dict := stream.Dict.Clone()
		dict.Set("Filter", Name("FlateDecode"))
		dict.Set("Length", Integer(buf.Len()))
		doc.Objects[id] = &Stream{Dict: dict, Data: buf.Bytes()}
	}
}

package pdf

import (
	"errors"
	"fmt"
)

// Document is an in-memory PDF object graph keyed by object id.
type Document struct {
	Version string
	Objects map[ObjectID]Object
	Trailer *Dictionary
	// MaxID is the highest allocated object number.
	MaxID int

	bookmarks    []*Bookmark
	bookmarkByID map[int]*Bookmark
	nextBookmark int
}

// NewDocument creates an empty document with the given PDF version.
func NewDocument(version string) *Document {
	return &Document{
		Version:      version,
		Objects:      map[ObjectID]Object{},
		Trailer:      NewDictionary(),
		bookmarkByID: map[int]*Bookmark{},
		nextBookmark: 1,
	}
}

var ErrObjectNotFound = errors.New("object not found")

func (doc *Document) GetObject(id ObjectID) (Object, error) {
	if o, ok := doc.Objects[id]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
}

// AddObject inserts a new object under the next free number and returns its
// id.
func (doc *Document) AddObject(o Object) ObjectID {
	doc.MaxID++
	id := ObjectID{Number: doc.MaxID}
	doc.Objects[id] = o
	return id
}

// Set places an object under an explicit id, growing MaxID when needed.
func (doc *Document) Set(id ObjectID, o Object) {
	doc.Objects[id] = o
	if id.Number > doc.MaxID {
		doc.MaxID = id.Number
	}
}

// Resolve follows references until a non-reference object or a dead end.
func (doc *Document) Resolve(o Object) Object {
	for range [32]struct{}{} {
		ref, ok := o.(Reference)
		if !ok {
			return o
		}
		next, exists := doc.Objects[ObjectID(ref)]
		if !exists {
			return nil
		}
		o = next
	}
	return nil
}

// Catalog returns the document's root dictionary.
func (doc *Document) Catalog() (*Dictionary, error) {
	rootID, ok := doc.Trailer.GetReference("Root")
	if !ok {
		return nil, errors.New("trailer has no Root")
	}
	obj, err := doc.GetObject(rootID)
	if err != nil {
		return nil, err
	}
	d, ok := DictOf(obj)
	if !ok {
		return nil, errors.New("catalog is not a dictionary")
	}
	return d, nil
}

// GetPages returns page ordinal (1-based) to object id, in document order.
func (doc *Document) GetPages() map[int]ObjectID {
	pages := map[int]ObjectID{}
	for i, id := range doc.PageIDs() {
		pages[i+1] = id
	}
	return pages
}

// PageIDs walks the page tree depth-first and returns page object ids in
// document order. Malformed trees yield whatever pages are reachable.
func (doc *Document) PageIDs() []ObjectID {
	catalog, err := doc.Catalog()
	if err != nil {
		return nil
	}
	rootRef, ok := catalog.GetReference("Pages")
	if !ok {
		return nil
	}
	var out []ObjectID
	visited := map[ObjectID]bool{}
	doc.collectPages(rootRef, visited, &out)
	return out
}

func (doc *Document) collectPages(id ObjectID, visited map[ObjectID]bool, out *[]ObjectID) {
	if visited[id] {
		return
	}
	visited[id] = true
	obj, err := doc.GetObject(id)
	if err != nil {
		return
	}
	d, ok := DictOf(obj)
	if !ok {
		return
	}
	switch t, _ := d.GetName("Type"); t {
	case "Page":
		*out = append(*out, id)
	case "Pages":
		kids, _ := d.GetArray("Kids")
		for _, kid := range kids {
			if ref, ok := kid.(Reference); ok {
				doc.collectPages(ObjectID(ref), visited, out)
			}
		}
	}
}

// RenumberObjectsWith remaps every object id to a contiguous range starting
// at start, in increasing order of the old ids, updating every reference,
// the trailer, and the bookmark table.
func (doc *Document) RenumberObjectsWith(start int) {
	mapping := map[ObjectID]ObjectID{}
	newObjects := make(map[ObjectID]Object, len(doc.Objects))
	next := start
	for _, oldID := range SortedIDs(doc.Objects) {
		mapping[oldID] = ObjectID{Number: next}
		next++
	}
	for oldID, obj := range doc.Objects {
		newObjects[mapping[oldID]] = remapObject(obj, mapping)
	}
	doc.Objects = newObjects
	doc.Trailer = remapDict(doc.Trailer, mapping)
	for _, bm := range doc.bookmarks {
		bm.remap(mapping)
	}
	doc.MaxID = next - 1
}

// RenumberObjects renumbers from 1.
func (doc *Document) RenumberObjects() {
	doc.RenumberObjectsWith(1)
}

func remapObject(o Object, mapping map[ObjectID]ObjectID) Object {
	switch v := o.(type) {
	case Reference:
		if newID, ok := mapping[ObjectID(v)]; ok {
			return Reference(newID)
		}
		// dangling reference: keep it, the writer emits it as-is
		return v
	case Array:
		out := make(Array, len(v))
		for i, item := range v {
			out[i] = remapObject(item, mapping)
		}
		return out
	case *Dictionary:
		return remapDict(v, mapping)
	case *Stream:
		return &Stream{Dict: remapDict(v.Dict, mapping), Data: v.Data}
	}
	return o
}

func remapDict(d *Dictionary, mapping map[ObjectID]ObjectID) *Dictionary {
	out := NewDictionary()
	for _, k := range d.keys {
		out.Set(k, remapObject(d.m[k], mapping))
	}
	return out
}

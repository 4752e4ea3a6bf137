package pdf

// Bookmark is one regenerated outline entry. Pre-existing outlines of merged
// inputs are discarded; the merger rebuilds the tree from these.
type Bookmark struct {
	Title  string
	Color  [3]float64
	Format int
	Page   ObjectID

	id       int
	children []*Bookmark
}

// NewBookmark builds a leaf bookmark pointing at a page object.
func NewBookmark(title string, color [3]float64, format int, page ObjectID) Bookmark {
	return Bookmark{Title: title, Color: color, Format: format, Page: page}
}

func (b *Bookmark) remap(mapping map[ObjectID]ObjectID) {
	if newID, ok := mapping[b.Page]; ok {
		b.Page = newID
	}
	for _, c := range b.children {
		c.remap(mapping)
	}
}

// AddBookmark appends a bookmark under the given parent bookmark id (zero
// for top level) and returns the new bookmark's id.
func (doc *Document) AddBookmark(bm Bookmark, parent int) int {
	node := bm
	node.id = doc.nextBookmark
	doc.nextBookmark++
	doc.bookmarkByID[node.id] = &node
	if p, ok := doc.bookmarkByID[parent]; ok && parent != 0 {
		p.children = append(p.children, &node)
	} else {
		doc.bookmarks = append(doc.bookmarks, &node)
	}
	return node.id
}

// Bookmarks exposes the top-level bookmark list.
func (doc *Document) Bookmarks() []*Bookmark {
	return doc.bookmarks
}

// AdjustZeroPages points bookmarks with a zero page reference at their first
// child's page, so intermediate nodes created without a destination still
// lead somewhere.
func (doc *Document) AdjustZeroPages() {
	var walk func(b *Bookmark)
	walk = func(b *Bookmark) {
		for _, c := range b.children {
			walk(c)
		}
		if (b.Page == ObjectID{}) && len(b.children) > 0 {
			b.Page = b.children[0].Page
		}
	}
	for _, b := range doc.bookmarks {
		walk(b)
	}
}

// BuildOutline materializes the bookmark tree as Outlines/outline-item
// objects and returns the root outline object id; ok is false when there are
// no bookmarks.
func (doc *Document) BuildOutline() (ObjectID, bool) {
	if len(doc.bookmarks) == 0 {
		return ObjectID{}, false
	}
	rootID := doc.reserveID()
	first, last, count := doc.writeOutlineLevel(doc.bookmarks, rootID)
	root := NewDictionary()
	root.Set("Type", Name("Outlines"))
	root.Set("First", Reference(first))
	root.Set("Last", Reference(last))
	root.Set("Count", Integer(count))
	doc.Objects[rootID] = root
	return rootID, true
}

func (doc *Document) reserveID() ObjectID {
	doc.MaxID++
	return ObjectID{Number: doc.MaxID}
}

// writeOutlineLevel emits one sibling chain and returns its first id, last
// id, and the entry count of the level.
func (doc *Document) writeOutlineLevel(level []*Bookmark, parent ObjectID) (ObjectID, ObjectID, int) {
	ids := make([]ObjectID, len(level))
	for i := range level {
		ids[i] = doc.reserveID()
	}
	for i, bm := range level {
		item := NewDictionary()
		item.Set("Title", String{Data: []byte(bm.Title)})
		item.Set("Parent", Reference(parent))
		if bm.Page != (ObjectID{}) {
			item.Set("Dest", Array{Reference(bm.Page), Name("Fit")})
		}
		item.Set("C", Array{Real(bm.Color[0]), Real(bm.Color[1]), Real(bm.Color[2])})
		item.Set("F", Integer(bm.Format))
		if i > 0 {
			item.Set("Prev", Reference(ids[i-1]))
		}
		if i < len(ids)-1 {
			item.Set("Next", Reference(ids[i+1]))
		}
		if len(bm.children) > 0 {
			first, last, count := doc.writeOutlineLevel(bm.children, ids[i])
			item.Set("First", Reference(first))
			item.Set("Last", Reference(last))
			item.Set("Count", Integer(count))
		}
		doc.Objects[ids[i]] = item
	}
	return ids[0], ids[len(ids)-1], len(level)
}

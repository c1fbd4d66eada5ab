package subtitle

import (
	"fmt"
	"slices"
)

// Document is an ordered sequence of sections.
//
// Order is the insertion order of the source file and only changes when a
// whole section is deleted. Sections are addressed by their stable ID through
// an index map; display indexes are resolved with ByIndex.
type Document struct {
	order  []int
	byID   map[int]*Section
	nextID int
}

// NewDocument builds a document from the given sections, assigning IDs in order.
func NewDocument(sections ...Section) *Document {
	d := &Document{byID: make(map[int]*Section, len(sections))}
	for _, s := range sections {
		d.Append(s)
	}
	return d
}

// Append adds a section at the end of the document and returns its ID.
// Any ID carried by s is replaced.
func (d *Document) Append(s Section) int {
	if d.byID == nil {
		d.byID = make(map[int]*Section)
	}
	d.nextID++
	s = s.Clone()
	s.ID = d.nextID
	d.byID[s.ID] = &s
	d.order = append(d.order, s.ID)
	return s.ID
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.order)
}

// At returns a copy of the section at position pos.
func (d *Document) At(pos int) Section {
	return d.byID[d.order[pos]].Clone()
}

// Get returns a copy of the section with the given ID.
func (d *Document) Get(id int) (Section, bool) {
	s, ok := d.byID[id]
	if !ok {
		return Section{}, false
	}
	return s.Clone(), true
}

// ByIndex returns the first section whose display index equals index.
func (d *Document) ByIndex(index string) (Section, bool) {
	for _, id := range d.order {
		if s := d.byID[id]; s.Index == index {
			return s.Clone(), true
		}
	}
	return Section{}, false
}

// Position returns the current position of the section with the given ID, or -1.
func (d *Document) Position(id int) int {
	return slices.Index(d.order, id)
}

// Sections returns copies of all sections in document order.
func (d *Document) Sections() []Section {
	out := make([]Section, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byID[id].Clone())
	}
	return out
}

// SetLines replaces the text lines of a section.
func (d *Document) SetLines(id int, lines []string) error {
	s, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("set lines of section %d: %w", id, ErrSectionNotFound)
	}
	s.Lines = slices.Clone(lines)
	return nil
}

// SetTime replaces the time range line of a section.
func (d *Document) SetTime(id int, timeRange string) error {
	s, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("set time of section %d: %w", id, ErrSectionNotFound)
	}
	s.Time = timeRange
	return nil
}

// Delete removes a section from the document.
func (d *Document) Delete(id int) error {
	pos := d.Position(id)
	if pos < 0 {
		return fmt.Errorf("delete section %d: %w", id, ErrSectionNotFound)
	}
	d.order = slices.Delete(d.order, pos, pos+1)
	delete(d.byID, id)
	return nil
}

// Renumber rewrites every display index sequentially starting at 1.
func (d *Document) Renumber() {
	for i, id := range d.order {
		d.byID[id].Index = fmt.Sprint(i + 1)
	}
}

// Clone returns a deep copy of the document. IDs are preserved.
func (d *Document) Clone() *Document {
	c := &Document{
		order:  slices.Clone(d.order),
		byID:   make(map[int]*Section, len(d.byID)),
		nextID: d.nextID,
	}
	for id, s := range d.byID {
		cp := s.Clone()
		c.byID[id] = &cp
	}
	return c
}

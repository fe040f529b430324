package render

import (
	"sync"
)

// TableID identifies a result table in the document.
type TableID string

const (
	// CharacterTable shows name and birth year.
	CharacterTable TableID = "character-table"

	// PlanetTable shows name and orbital period.
	PlanetTable TableID = "planet-table"
)

// Element IDs of the non-table parts of the document.
const (
	LoadingElementID     = "loading"
	ErrorElementID       = "error"
	PageNumberElementID  = "page-number"
	characterContainerID = "character-data"
	planetContainerID    = "planet-data"
)

// Element is an opaque visibility sink.
type Element struct {
	ID     string `json:"id"`
	Hidden bool   `json:"hidden"`
}

// Table is a result table and its row container.
type Table struct {
	Element
	ContainerID string    `json:"container_id"`
	Title       string    `json:"title"`
	Headers     [2]string `json:"headers"`
	Rows        []Row     `json:"rows"`

	// Total is the record count across all pages, as reported by the API.
	Total int `json:"total"`

	// HasNext reports whether the API advertised a page after the one shown.
	HasNext bool `json:"has_next"`
}

// TableData is the outcome of a successful fetch for one table.
type TableData struct {
	Rows    []Row
	Total   int
	HasNext bool
}

// Ticket binds a completion to the StartLoading call that issued it.
type Ticket struct {
	Table TableID
	seq   uint64
}

// Snapshot is an immutable copy of the document for rendering.
type Snapshot struct {
	Loading      Element `json:"loading"`
	Error        Element `json:"error"`
	ErrorMessage string  `json:"error_message,omitempty"`
	PageDisplay  Element `json:"page_display"`
	Page         int     `json:"page"`
	Tables       []Table `json:"tables"`
}

// Table returns the snapshot of the table with the given id.
func (s Snapshot) Table(id TableID) (Table, bool) {
	for _, t := range s.Tables {
		if TableID(t.ID) == id {
			return t, true
		}
	}
	return Table{}, false
}

// HasNext reports whether any visible table advertises a following page.
func (s Snapshot) HasNext() bool {
	for _, t := range s.Tables {
		if !t.Hidden && t.HasNext {
			return true
		}
	}
	return false
}

// Document is the view model: a loading indicator, one table per resource,
// a page-number display and an error element. It is safe for concurrent use.
//
// Each StartLoading must be matched by exactly one Complete or Fail.
// Completions carrying a ticket older than the latest StartLoading for the
// same table are discarded, so a slow stale fetch cannot overwrite newer rows.
type Document struct {
	mu           sync.Mutex
	loading      Element
	errorEl      Element
	errorMessage string
	pageDisplay  Element
	page         int
	tables       map[TableID]*Table
	order        []TableID
	latest       map[TableID]uint64
	seq          uint64
	inFlight     int
}

// NewDocument creates a document showing page 1 with the loading indicator
// and all tables hidden.
func NewDocument() *Document {
	d := &Document{
		loading:     Element{ID: LoadingElementID, Hidden: true},
		errorEl:     Element{ID: ErrorElementID, Hidden: true},
		pageDisplay: Element{ID: PageNumberElementID},
		page:        1,
		tables:      make(map[TableID]*Table),
		latest:      make(map[TableID]uint64),
	}

	d.addTable(&Table{
		Element:     Element{ID: string(CharacterTable), Hidden: true},
		ContainerID: characterContainerID,
		Title:       "Characters",
		Headers:     [2]string{"Name", "Birth Year"},
	})
	d.addTable(&Table{
		Element:     Element{ID: string(PlanetTable), Hidden: true},
		ContainerID: planetContainerID,
		Title:       "Planets",
		Headers:     [2]string{"Name", "Orbital Period"},
	})

	return d
}

func (d *Document) addTable(t *Table) {
	id := TableID(t.ID)
	d.tables[id] = t
	d.order = append(d.order, id)
}

// StartLoading shows the loading indicator, hides every table and clears
// the error state. The returned ticket must be passed to Complete or Fail.
func (d *Document) StartLoading(id TableID) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.latest[id] = d.seq
	d.inFlight++

	d.loading.Hidden = false
	for _, t := range d.tables {
		t.Hidden = true
	}
	d.errorEl.Hidden = true
	d.errorMessage = ""

	return Ticket{Table: id, seq: d.seq}
}

// Complete replaces the table's rows wholesale and shows that table only.
// The loading indicator is hidden once no fetch is in flight.
// It returns false, leaving the rows untouched, when the ticket is stale.
func (d *Document) Complete(ticket Ticket, data TableData) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.finishLocked()

	t, ok := d.tables[ticket.Table]
	if !ok || d.latest[ticket.Table] != ticket.seq {
		return false
	}

	rows := make([]Row, len(data.Rows))
	copy(rows, data.Rows)
	t.Rows = rows
	t.Total = data.Total
	t.HasNext = data.HasNext
	t.Hidden = false

	return true
}

// Fail shows message in the error element and leaves the table hidden.
// It returns false when the ticket is stale.
func (d *Document) Fail(ticket Ticket, message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.finishLocked()

	if d.latest[ticket.Table] != ticket.seq {
		return false
	}

	d.errorEl.Hidden = false
	d.errorMessage = message
	return true
}

func (d *Document) finishLocked() {
	if d.inFlight > 0 {
		d.inFlight--
	}
	if d.inFlight == 0 {
		d.loading.Hidden = true
	}
}

// SetPageDisplay updates the page-number element.
func (d *Document) SetPageDisplay(page int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.page = page
}

// Snapshot returns a deep copy of the current document state.
func (d *Document) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		Loading:      d.loading,
		Error:        d.errorEl,
		ErrorMessage: d.errorMessage,
		PageDisplay:  d.pageDisplay,
		Page:         d.page,
		Tables:       make([]Table, 0, len(d.order)),
	}
	for _, id := range d.order {
		t := *d.tables[id]
		rows := make([]Row, len(t.Rows))
		copy(rows, t.Rows)
		t.Rows = rows
		s.Tables = append(s.Tables, t)
	}
	return s
}

package weather

// Directory is the read-only registry of known stations. It keeps insertion
// order so that name lookups and tie-breaks are stable for a given build.
// A Directory is never modified after it is returned by a builder; refreshes
// construct a new one.
type Directory struct {
	byID  map[string]Station
	order []string
}

// NewDirectory builds a Directory from stations. When ids collide the first
// station wins.
func NewDirectory(stations ...Station) *Directory {
	d := newMutableDirectory()
	for _, st := range stations {
		d.add(st)
	}
	return d
}

func newMutableDirectory() *Directory {
	return &Directory{byID: make(map[string]Station)}
}

// add inserts st unless its id is already taken. Only builders call it.
func (d *Directory) add(st Station) bool {
	if _, exists := d.byID[st.ID]; exists {
		return false
	}
	d.byID[st.ID] = st
	d.order = append(d.order, st.ID)
	return true
}

func (d *Directory) has(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// Station returns the station stored under id.
func (d *Directory) Station(id string) (Station, bool) {
	if d == nil {
		return Station{}, false
	}
	st, ok := d.byID[id]
	return st, ok
}

// Len returns the number of stations.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Stations returns a copy of all stations in directory order.
func (d *Directory) Stations() []Station {
	if d == nil {
		return nil
	}
	result := make([]Station, 0, len(d.order))
	for _, id := range d.order {
		result = append(result, d.byID[id])
	}
	return result
}

// CountBySource reports how many stations each source contributed.
func (d *Directory) CountBySource() map[Source]int {
	counts := make(map[Source]int)
	if d == nil {
		return counts
	}
	for _, st := range d.byID {
		counts[st.Source]++
	}
	return counts
}

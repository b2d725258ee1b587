package betsheet

// Sheet is an ordered set of player ids, most recently added first.
type Sheet struct {
	ids []string
}

func New() *Sheet {
	return &Sheet{}
}

// Add prepends id. It returns false when id is already on the sheet.
func (s *Sheet) Add(id string) bool {
	if id == "" || s.Contains(id) {
		return false
	}
	s.ids = append([]string{id}, s.ids...)
	return true
}

// Remove drops id. It returns false when id was not on the sheet.
func (s *Sheet) Remove(id string) bool {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Sheet) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (s *Sheet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the sheet in display order.
func (s *Sheet) IDs() []string {
	return append([]string(nil), s.ids...)
}

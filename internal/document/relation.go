package document

// BoardMember is a person holding a board-level position.
type BoardMember struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

// PersonDuplet is the pair of person names found in one segment.
type PersonDuplet struct {
	Person1 string `json:"person_1"`
	Person2 string `json:"person_2"`
}

// Segment is a candidate passage together with its person pair.
// A nil Duplet means the passage did not yield exactly two persons.
type Segment struct {
	Text   string
	Duplet *PersonDuplet
}

// FamilialTriplet is a labelled familial relation between two persons.
type FamilialTriplet struct {
	Person1 string `json:"person_1"`
	Person2 string `json:"person_2"`
	Label   string `json:"label"`
	Keyword string `json:"keyword"`
	Text    string `json:"text"`
}

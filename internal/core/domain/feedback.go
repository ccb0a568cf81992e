package domain

// Feedback is a user rating for one answered query. It is appended verbatim
// as a single JSON line to the local feedback log, so field order and names
// are part of the format.
type Feedback struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
	Rating int    `json:"feedback"`
}

func (f Feedback) Valid() bool {
	return f.Rating >= 1 && f.Rating <= 5
}

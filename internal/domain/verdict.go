package domain

// Corroboration is a known headline supporting (or failing to support) a
// checked article, with its semantic similarity to the checked title.
type Corroboration struct {
	Title string
	Score float64
}

// Verdict is the outcome of a fake-news check for one URL.
type Verdict struct {
	URL            string
	Title          string
	Suspect        bool
	Corroborations []Corroboration
	Explanation    string
}

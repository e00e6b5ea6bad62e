package domain

// Article is a core entity describing one item from a daily listing snapshot.
type Article struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	PDFURL   string `json:"pdf_url"`
}

// HasDocument reports whether the article points at a downloadable document.
func (a Article) HasDocument() bool {
	return a.PDFURL != ""
}

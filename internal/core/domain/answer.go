package domain

// Answer is the generated reply plus the retrieved context it was built from.
type Answer struct {
	Text    string `json:"answer"`
	Context string `json:"context"`
}

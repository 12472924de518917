package domain

// ExtractedFile is an attached file with the text the backend pulled out of it.
type ExtractedFile struct {
	Name string `json:"name"`
	Text string `json:"extractedText"`
}

// OriginalInput is what the user submitted when the draft was created.
// It is only replaced by creating a new draft.
type OriginalInput struct {
	Prompt string          `json:"prompt"`
	Files  []ExtractedFile `json:"attachedFiles"`
}

// Clone returns a deep copy.
func (o *OriginalInput) Clone() *OriginalInput {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Files = append([]ExtractedFile(nil), o.Files...)
	return &cp
}

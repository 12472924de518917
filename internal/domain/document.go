package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrFieldNotFound is returned when a field ID does not exist in its group.
	ErrFieldNotFound = errors.New("field not found")
	// ErrUnknownGroup is returned for a field group other than personal or accused.
	ErrUnknownGroup = errors.New("unknown field group")
)

// FieldGroup selects one of the party field sequences.
type FieldGroup string

const (
	GroupPersonal FieldGroup = "personal"
	GroupAccused  FieldGroup = "accused"
)

// ParseFieldGroup validates a raw group name.
func ParseFieldGroup(raw string) (FieldGroup, error) {
	switch g := FieldGroup(raw); g {
	case GroupPersonal, GroupAccused:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGroup, raw)
	}
}

// LabeledField is one party detail line such as name or address.
type LabeledField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder,omitempty"`
}

// FieldSpec describes one key of the fixed party schema.
type FieldSpec struct {
	Key         string
	Label       string
	Placeholder string
}

// PersonalFields is the fixed complainant schema, in display order.
var PersonalFields = []FieldSpec{
	{Key: "name", Label: "성명", Placeholder: "홍길동"},
	{Key: "idNumber", Label: "주민등록번호", Placeholder: "000000-0000000"},
	{Key: "address", Label: "주소", Placeholder: "주소를 입력하세요"},
	{Key: "job", Label: "직업", Placeholder: "직업"},
	{Key: "officeAddress", Label: "사무실 주소", Placeholder: "사무실 주소"},
	{Key: "phone", Label: "전화번호", Placeholder: "010-0000-0000"},
	{Key: "email", Label: "이메일", Placeholder: "example@email.com"},
}

// AccusedFields is the fixed accused-party schema, in display order.
var AccusedFields = []FieldSpec{
	{Key: "accusedName", Label: "성명", Placeholder: "피고소인 성명"},
	{Key: "accusedPhone", Label: "연락처", Placeholder: "010-0000-0000"},
	{Key: "accusedAddress", Label: "주소", Placeholder: "피고소인 주소"},
}

// DefaultFilingOffice is the addressee printed at the bottom of the complaint.
const DefaultFilingOffice = "OO경찰서장 귀중"

// DateLayout formats the filing date shown on the title page.
const DateLayout = "2006년 1월 2일"

// DraftDocument is the structured complaint being composed.
type DraftDocument struct {
	PersonalInfo []LabeledField `json:"personalInfo"`
	AccusedInfo  []LabeledField `json:"accusedInfo"`
	Purpose      string         `json:"purpose"`
	Facts        string         `json:"facts"`
	Reasons      string         `json:"reasons"`
	Date         string         `json:"date"`
	FilingOffice string         `json:"filingOffice"`
}

// FieldsFromSchema builds a field sequence for the given schema using values keyed by schema key.
// Keys missing from values default to empty; the schema key becomes the field ID.
func FieldsFromSchema(specs []FieldSpec, values map[string]string) []LabeledField {
	fields := make([]LabeledField, 0, len(specs))
	for _, spec := range specs {
		fields = append(fields, LabeledField{
			ID:          spec.Key,
			Label:       spec.Label,
			Value:       values[spec.Key],
			Placeholder: spec.Placeholder,
		})
	}
	return fields
}

// Section returns the content of one narrative section.
func (d *DraftDocument) Section(s Section) string {
	return d.Sections().Get(s)
}

// SetSection overwrites exactly one narrative section.
func (d *DraftDocument) SetSection(s Section, content string) error {
	switch s {
	case SectionPurpose:
		d.Purpose = content
	case SectionFacts:
		d.Facts = content
	case SectionReasons:
		d.Reasons = content
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return nil
}

// Sections returns the narrative values as a context bundle.
func (d *DraftDocument) Sections() Sections {
	return Sections{Purpose: d.Purpose, Facts: d.Facts, Reasons: d.Reasons}
}

func (d *DraftDocument) group(g FieldGroup) (*[]LabeledField, error) {
	switch g {
	case GroupPersonal:
		return &d.PersonalInfo, nil
	case GroupAccused:
		return &d.AccusedInfo, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, g)
	}
}

// Fields returns the field sequence for a group.
func (d *DraftDocument) Fields(g FieldGroup) []LabeledField {
	fields, err := d.group(g)
	if err != nil {
		return nil
	}
	return *fields
}

// AddField appends a new empty field with a fresh ID and returns it.
func (d *DraftDocument) AddField(g FieldGroup, label, placeholder string) (LabeledField, error) {
	fields, err := d.group(g)
	if err != nil {
		return LabeledField{}, err
	}
	field := LabeledField{
		ID:          d.newFieldID(*fields),
		Label:       label,
		Placeholder: placeholder,
	}
	*fields = append(*fields, field)
	return field, nil
}

func (d *DraftDocument) newFieldID(existing []LabeledField) string {
	for {
		id := uuid.NewString()
		if indexOfField(existing, id) < 0 {
			return id
		}
	}
}

// RemoveField deletes a field by ID, preserving the order of the rest.
func (d *DraftDocument) RemoveField(g FieldGroup, id string) error {
	fields, err := d.group(g)
	if err != nil {
		return err
	}
	i := indexOfField(*fields, id)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrFieldNotFound, g, id)
	}
	*fields = append((*fields)[:i:i], (*fields)[i+1:]...)
	return nil
}

// UpdateField edits a field's label and value in place.
func (d *DraftDocument) UpdateField(g FieldGroup, id, label, value string) error {
	fields, err := d.group(g)
	if err != nil {
		return err
	}
	i := indexOfField(*fields, id)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrFieldNotFound, g, id)
	}
	(*fields)[i].Label = label
	(*fields)[i].Value = value
	return nil
}

// Clone returns a deep copy of the document.
func (d *DraftDocument) Clone() *DraftDocument {
	if d == nil {
		return nil
	}
	cp := *d
	cp.PersonalInfo = append([]LabeledField(nil), d.PersonalInfo...)
	cp.AccusedInfo = append([]LabeledField(nil), d.AccusedInfo...)
	return &cp
}

func indexOfField(fields []LabeledField, id string) int {
	for i, f := range fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

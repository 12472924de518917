package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldsFromSchemaFillsEveryKey(t *testing.T) {
	t.Parallel()

	fields := FieldsFromSchema(PersonalFields, map[string]string{"name": "홍길동", "unknown": "x"})
	if len(fields) != len(PersonalFields) {
		t.Fatalf("expected %d fields, got %d", len(PersonalFields), len(fields))
	}
	for i, spec := range PersonalFields {
		if fields[i].ID != spec.Key {
			t.Errorf("field %d: expected id %q, got %q", i, spec.Key, fields[i].ID)
		}
	}
	if fields[0].Value != "홍길동" {
		t.Errorf("expected name value, got %q", fields[0].Value)
	}
	if fields[1].Value != "" {
		t.Errorf("expected missing key to default to empty, got %q", fields[1].Value)
	}
}

func TestSetSectionTouchesOnlyTarget(t *testing.T) {
	t.Parallel()

	doc := &DraftDocument{Purpose: "A", Facts: "B", Reasons: "C"}
	if err := doc.SetSection(SectionFacts, "B'"); err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}
	want := Sections{Purpose: "A", Facts: "B'", Reasons: "C"}
	if diff := cmp.Diff(want, doc.Sections()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	if err := doc.SetSection(Section("title"), "x"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestAddRemoveUpdateField(t *testing.T) {
	t.Parallel()

	doc := &DraftDocument{AccusedInfo: FieldsFromSchema(AccusedFields, nil)}
	added, err := doc.AddField(GroupAccused, "직장", "")
	if err != nil {
		t.Fatalf("AddField failed: %v", err)
	}

	seen := map[string]bool{}
	for _, f := range doc.AccusedInfo {
		if seen[f.ID] {
			t.Fatalf("duplicate field id %q", f.ID)
		}
		seen[f.ID] = true
	}
	if last := doc.AccusedInfo[len(doc.AccusedInfo)-1]; last.ID != added.ID {
		t.Fatalf("expected new field appended last, got %q", last.ID)
	}

	if err := doc.UpdateField(GroupAccused, added.ID, "직장명", "주식회사"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if got := doc.AccusedInfo[len(doc.AccusedInfo)-1]; got.Label != "직장명" || got.Value != "주식회사" {
		t.Fatalf("unexpected updated field: %+v", got)
	}

	if err := doc.RemoveField(GroupAccused, "accusedPhone"); err != nil {
		t.Fatalf("RemoveField failed: %v", err)
	}
	var ids []string
	for _, f := range doc.AccusedInfo {
		ids = append(ids, f.ID)
	}
	if diff := cmp.Diff([]string{"accusedName", "accusedAddress", added.ID}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if err := doc.RemoveField(GroupAccused, "accusedPhone"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if _, err := doc.AddField(FieldGroup("witness"), "x", ""); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	doc := &DraftDocument{PersonalInfo: FieldsFromSchema(PersonalFields, nil), Facts: "B"}
	cp := doc.Clone()
	cp.PersonalInfo[0].Value = "changed"
	cp.Facts = "changed"

	if doc.PersonalInfo[0].Value != "" || doc.Facts != "B" {
		t.Fatalf("clone mutated original: %+v", doc)
	}
}

func TestChatHistorySkipsErrorTurns(t *testing.T) {
	t.Parallel()

	session := &ChatSession{Section: SectionFacts, Messages: []Message{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "network down", Error: true},
		{Role: RoleUser, Content: "q2"},
	}}
	got := session.History()
	if len(got) != 2 || got[1].Content != "q2" {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestParseSection(t *testing.T) {
	t.Parallel()

	for _, s := range AllSections {
		got, err := ParseSection(string(s))
		if err != nil || got != s {
			t.Errorf("ParseSection(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseSection("summary"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
}

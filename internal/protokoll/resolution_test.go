package protokoll_test

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/protokoll"
	"github.com/google/go-cmp/cmp"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPreferredSource(t *testing.T) {
	older := time.Date(2024, time.March, 7, 18, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	tests := []struct {
		name       string
		padEdited  *time.Time
		fileEdited *time.Time
		expected   protokoll.SourceKind
	}{
		{name: "pad newer than file", padEdited: &newer, fileEdited: &older, expected: protokoll.SourcePad},
		{name: "pad without file", padEdited: &older, expected: protokoll.SourcePad},
		{name: "file newer than pad", padEdited: &older, fileEdited: &newer, expected: protokoll.SourceFile},
		{name: "same time prefers file", padEdited: &older, fileEdited: &older, expected: protokoll.SourceFile},
		{name: "only file", fileEdited: &older, expected: protokoll.SourceFile},
		{name: "nothing", expected: protokoll.SourceTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := protokoll.PreferredSource(tt.padEdited, tt.fileEdited); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestAvailableSources(t *testing.T) {
	got := protokoll.AvailableSources(false, true)
	expected := []protokoll.SourceKind{protokoll.SourceUpload, protokoll.SourcePad, protokoll.SourceTemplate}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("first time sources mismatch (-want +got):\n%s", diff)
	}

	got = protokoll.AvailableSources(true, false)
	expected = []protokoll.SourceKind{protokoll.SourceFile, protokoll.SourceTemplate}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("edit sources mismatch (-want +got):\n%s", diff)
	}
}

func TestBlankTemplate(t *testing.T) {
	meeting := testMeeting()

	got, err := protokoll.BlankTemplate(&protokoll.DirTemplateLoader{Dir: t.TempDir()}, meeting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "% Protokoll Fachschaftsrat vom 07.03.2024\n" +
		"% Zeilen, die mit % beginnen, erscheinen nicht im Protokoll.\n" +
		"\n" +
		"Sitzungsleitung: [[ sitzungsleitung ]]\n" +
		"Protokoll: [[ protokollant ]]\n" +
		"\n" +
		"= TOP 1: Begrüßung =\n" +
		"\n" +
		"= TOP 2: Finanzen =\n" +
		"\n" +
		"Haushalt 2024\n"
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("BlankTemplate() mismatch (-want +got):\n%s", diff)
	}

	// the blank template is a valid source
	if _, err := testAssembler(t.TempDir()).RenderBody(got, meeting, nil); err != nil {
		t.Errorf("blank template does not render: %v", err)
	}
}

func TestBlankTemplatePerCommittee(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "fsr"), 0o755); err != nil {
		t.Fatal(err)
	}
	vorlage := "{{range .Tops}}TOP {{.TopID}}\n{{end}}"
	if err := os.WriteFile(filepath.Join(dir, "fsr", "vorlage.t2t"), []byte(vorlage), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := protokoll.BlankTemplate(&protokoll.DirTemplateLoader{Dir: dir}, testMeeting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "TOP 1\nTOP 2\n" {
		t.Errorf("unexpected template %q", got)
	}
}

func TestResolveSource(t *testing.T) {
	storage := protokoll.Storage{Root: t.TempDir()}
	r := &protokoll.SourceResolver{
		Pad:       stubPad{text: "Pad"},
		Storage:   storage,
		Templates: &protokoll.DirTemplateLoader{},
	}
	existing := &models.Protokoll{T2T: "protokolle/fsr/p.t2t"}
	if err := storage.Write(existing.T2T, []byte("Datei")); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name     string
		choice   protokoll.SourceChoice
		existing *models.Protokoll
		expected string
		wantErr  bool
	}{
		{name: "upload", choice: protokoll.UploadSource{Data: []byte("Upload")}, expected: "Upload"},
		{name: "empty upload", choice: protokoll.UploadSource{}, wantErr: true},
		{name: "pad", choice: protokoll.PadSource{PadID: "g$p"}, expected: "Pad"},
		{name: "file", choice: protokoll.FileSource{}, existing: existing, expected: "Datei"},
		{name: "file without record", choice: protokoll.FileSource{}, wantErr: true},
		{name: "nothing chosen", choice: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.choice, testMeeting(), tt.existing)
			if tt.wantErr {
				if !errors.Is(err, protokoll.ErrNoSource) {
					t.Errorf("expected ErrNoSource, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

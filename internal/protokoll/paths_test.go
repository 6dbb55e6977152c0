package protokoll_test

import (
	"fachschaft-protokolle/internal/protokoll"
	"github.com/google/go-cmp/cmp"
	"testing"
	"time"
)

func TestPaths(t *testing.T) {
	date := time.Date(2024, time.March, 7, 18, 15, 0, 0, time.UTC)

	source := protokoll.SourcePath("fsr", date)
	if expected := "protokolle/fsr/protokoll_2024_03_07.t2t"; source != expected {
		t.Errorf("expected %q, got %q", expected, source)
	}
	if got := protokoll.ArtifactPath(source, "pdf"); got != "protokolle/fsr/protokoll_2024_03_07.pdf" {
		t.Errorf("unexpected artifact path %q", got)
	}
	if got := protokoll.Filename(source); got != "protokoll_2024_03_07" {
		t.Errorf("unexpected filename %q", got)
	}

	attachment := protokoll.AttachmentPath("fsr", date, 3, "../Haushalt 2024.pdf")
	if expected := "attachments/fsr/protokoll_2024_03_07_03_Haushalt_2024.pdf"; attachment != expected {
		t.Errorf("expected %q, got %q", expected, attachment)
	}

	expected := []string{
		"protokolle/fsr/protokoll_2024_03_07.t2t",
		"protokolle/fsr/protokoll_2024_03_07.html",
		"protokolle/fsr/protokoll_2024_03_07.txt",
		"protokolle/fsr/protokoll_2024_03_07.pdf",
		"protokolle/fsr/protokoll_2024_03_07.tex",
		"protokolle/fsr/protokoll_2024_03_07.aux",
		"protokolle/fsr/protokoll_2024_03_07.toc",
		"protokolle/fsr/protokoll_2024_03_07.log",
		"protokolle/fsr/protokoll_2024_03_07.out",
	}
	if diff := cmp.Diff(expected, protokoll.AllFiles(source)); diff != "" {
		t.Errorf("AllFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestStorage(t *testing.T) {
	s := protokoll.Storage{Root: t.TempDir(), BaseURL: "/media", SiteURL: "https://fs.example.org/"}

	if got := s.AbsoluteURL("protokolle/fsr/a b.pdf"); got != "https://fs.example.org/media/protokolle/fsr/a%20b.pdf" {
		t.Errorf("unexpected url %q", got)
	}

	if err := s.Write("protokolle/fsr/x.t2t", []byte("Text")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := s.Read("protokolle/fsr/x.t2t")
	if err != nil || string(b) != "Text" {
		t.Fatalf("expected written content, got %q, %v", b, err)
	}
	if err := s.Remove("protokolle/fsr/x.t2t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Exists("protokolle/fsr/x.t2t") {
		t.Error("expected file to be removed")
	}
	if err := s.Remove("protokolle/fsr/x.t2t"); err != nil {
		t.Errorf("removing a missing file must not fail: %v", err)
	}
}

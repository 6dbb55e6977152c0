package protokoll_test

import (
	"fachschaft-protokolle/internal/mail"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/protokoll"
	"github.com/google/go-cmp/cmp"
	"testing"
)

func TestMailContent(t *testing.T) {
	got, err := protokoll.MailContent(
		testMeeting(),
		models.Protokoll{Approved: false},
		"Inhalt",
		"https://fs.example.org/media/protokolle/fsr/protokoll_2024_03_07",
		"Fachschaft <fs@fs.example.org>",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mail.Message{
		Subject: "Vorläufiges Protokoll: Fachschaftsrat am 07.03.2024",
		Text: "Hallo zusammen,\n\n" +
			"das vorläufige Protokoll der Sitzung Fachschaftsrat am 07.03.2024 ist online:\n" +
			"https://fs.example.org/media/protokolle/fsr/protokoll_2024_03_07\n\n" +
			"Inhalt\n",
		From: "Fachschaft <fs@fs.example.org>",
		To:   "fsr@fs.example.org",
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("MailContent() mismatch (-want +got):\n%s", diff)
	}
}

package protokoll_test

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/protokoll"
	"os"
	"strings"
	"testing"
	"time"
)

// memoryRepository keeps meetings and Protokolle in memory.
type memoryRepository struct {
	database.NullRepository
	meeting     models.Meeting
	protokoll   *models.Protokoll
	attachments []models.Attachment
	deleted     []uint
	nextID      uint
}

func (m *memoryRepository) FindMeetingById(_ context.Context, id uint, meeting *models.Meeting) error {
	if id != m.meeting.ID {
		return database.ErrRecordNotFound
	}
	*meeting = m.meeting
	return nil
}

func (m *memoryRepository) FindProtokollByMeetingId(_ context.Context, meetingId uint, p *models.Protokoll) error {
	if m.protokoll == nil || m.protokoll.MeetingID != meetingId {
		return database.ErrRecordNotFound
	}
	*p = *m.protokoll
	return nil
}

func (m *memoryRepository) SaveProtokoll(_ context.Context, p *models.Protokoll) error {
	if p.ID == 0 {
		m.nextID++
		p.ID = m.nextID
	}
	saved := *p
	m.protokoll = &saved
	return nil
}

func (m *memoryRepository) DeleteProtokollById(_ context.Context, id uint) error {
	m.deleted = append(m.deleted, id)
	if m.protokoll != nil && m.protokoll.ID == id {
		m.protokoll = nil
	}
	return nil
}

func (m *memoryRepository) FindAttachmentsByMeetingId(_ context.Context, _ uint, attachments *[]models.Attachment) error {
	*attachments = m.attachments
	return nil
}

type stubPad struct {
	text string
	err  error
}

func (s stubPad) GetText(context.Context, string) (string, error) {
	return s.text, s.err
}

func newTestGenerator(t *testing.T, repo *memoryRepository, tc *fakeToolchain) *protokoll.Generator {
	t.Helper()
	root := t.TempDir()
	storage := protokoll.Storage{Root: root, BaseURL: "/media/", SiteURL: "https://fs.example.org"}
	templates := &protokoll.DirTemplateLoader{Dir: t.TempDir()}

	g := protokoll.NewGenerator(
		environment.Environment(repo, nil),
		storage,
		&protokoll.SourceResolver{Pad: stubPad{text: "Pad-Text"}, Storage: storage, Templates: templates},
		protokoll.NewAssembler(protokoll.NewTagRegistry(), templates),
		newTestDriver(tc),
	)
	g.Now = func() time.Time { return time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC) }
	g.NewRunID = func() string { return "run-1" }
	return g
}

func TestGenerateSuccess(t *testing.T) {
	repo := &memoryRepository{meeting: testMeeting()}
	tc := &fakeToolchain{}
	g := newTestGenerator(t, repo, tc)

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{
		MeetingID: 42,
		Begin:     "18:15",
		End:       "20:00",
		Source:    protokoll.UploadSource{Filename: "p.t2t", Data: []byte("= TOP 1 =\nText")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != protokoll.StateArtifactsGenerated || !result.Created {
		t.Fatalf("unexpected result %+v", result)
	}
	if repo.protokoll == nil {
		t.Fatal("expected the Protokoll to be saved")
	}
	p := repo.protokoll
	if p.T2T != "protokolle/fsr/protokoll_2024_03_07.t2t" || p.Approved || p.Published || p.FileLastEdited == nil {
		t.Errorf("unexpected Protokoll %+v", p)
	}

	source, err := g.Storage.Read(p.T2T)
	if err != nil || string(source) != "= TOP 1 =\nText" {
		t.Errorf("expected stored source, got %q, %v", source, err)
	}
	for _, ext := range protokoll.ArtifactExtensions {
		if !g.Storage.Exists(protokoll.ArtifactPath(p.T2T, ext)) {
			t.Errorf("expected %s artifact", ext)
		}
	}
}

func TestGenerateForcesApprovalWithoutApprovalWorkflow(t *testing.T) {
	meeting := testMeeting()
	meeting.MeetingType.ApproveRequired = false
	repo := &memoryRepository{meeting: meeting}
	g := newTestGenerator(t, repo, &fakeToolchain{})

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.TemplateSource{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Protokoll.Approved {
		t.Error("expected Protokoll to be approved")
	}
}

func TestGenerateRegeneratesInPlace(t *testing.T) {
	repo := &memoryRepository{meeting: testMeeting()}
	g := newTestGenerator(t, repo, &fakeToolchain{})
	ctx := context.Background()

	first, err := g.Generate(ctx, protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.UploadSource{Data: []byte("eins")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.Generate(ctx, protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.PadSource{PadID: "g$fsr"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Created || second.Protokoll.ID != first.Protokoll.ID || second.Protokoll.T2T != first.Protokoll.T2T {
		t.Errorf("expected regeneration of the same Protokoll, got %+v", second.Protokoll)
	}
	b, _ := g.Storage.Read(second.Protokoll.T2T)
	if string(b) != "Pad-Text" {
		t.Errorf("expected pad text as new source, got %q", b)
	}
}

func TestGenerateUnapprovedIsUnpublished(t *testing.T) {
	published := func() *models.Protokoll {
		return &models.Protokoll{Model: models.Model{ID: 3}, MeetingID: 42, T2T: "protokolle/fsr/protokoll_2024_03_07.t2t", Approved: true, Published: true}
	}
	tests := []struct {
		name      string
		approved  bool
		published bool
	}{
		{name: "approved stays public", approved: true, published: true},
		{name: "unapproved is withdrawn", approved: false, published: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepository{meeting: testMeeting(), protokoll: published()}
			g := newTestGenerator(t, repo, &fakeToolchain{})

			result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Approved: tt.approved, Source: protokoll.UploadSource{Data: []byte("Text")}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Protokoll.Approved != tt.approved || result.Protokoll.Published != tt.published {
				t.Errorf("got approved=%v published=%v", result.Protokoll.Approved, result.Protokoll.Published)
			}
		})
	}
}

func TestGenerateContentErrors(t *testing.T) {
	tests := []struct {
		name   string
		source []byte
		state  protokoll.State
	}{
		{name: "forbidden command", source: []byte("Text\n%!forbidden\n"), state: protokoll.StateForbiddenCommandError},
		{name: "tag syntax", source: []byte("[[ antrag foo=1 ]]x[[ endantrag ]]"), state: protokoll.StateTemplateSyntaxError},
		{name: "encoding", source: []byte{0xC4, 'x'}, state: protokoll.StateEncodingError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &models.Protokoll{Model: models.Model{ID: 7}, MeetingID: 42, T2T: "protokolle/fsr/protokoll_2024_03_07.t2t"}
			repo := &memoryRepository{meeting: testMeeting(), protokoll: existing}
			tc := &fakeToolchain{}
			g := newTestGenerator(t, repo, tc)
			if err := g.Storage.Write(protokoll.ArtifactPath(existing.T2T, "pdf"), []byte("alt")); err != nil {
				t.Fatal(err)
			}

			result, err := g.Generate(context.Background(), protokoll.GenerateRequest{
				MeetingID: 42,
				Source:    protokoll.UploadSource{Data: tt.source},
			})
			if err != nil {
				t.Fatalf("content errors must not be fatal: %v", err)
			}
			if result.State != tt.state || len(result.Message) == 0 {
				t.Errorf("unexpected result %+v", result)
			}
			if repo.protokoll != nil || len(repo.deleted) != 1 || repo.deleted[0] != 7 {
				t.Errorf("expected the Protokoll record to be deleted, deleted=%v", repo.deleted)
			}
			if g.Storage.Exists(protokoll.ArtifactPath(existing.T2T, "pdf")) {
				t.Error("expected artifacts to be deleted")
			}
			if len(tc.calls) != 0 {
				t.Errorf("toolchain must not run, got %v", tc.names())
			}
		})
	}
}

func TestGenerateToolchainDiagnostic(t *testing.T) {
	repo := &memoryRepository{meeting: testMeeting()}
	tc := &fakeToolchain{failTarget: "html", stderr: "txt2tags: Error: Unknown target"}
	g := newTestGenerator(t, repo, tc)

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.UploadSource{Data: []byte("Text")}})
	if err != nil {
		t.Fatalf("recognised diagnostics must not be fatal: %v", err)
	}
	if result.State != protokoll.StateToolchainError || result.Message != "txt2tags: Error: Unknown target" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(tc.calls) != 1 {
		t.Errorf("expected no txt/pdf generation after html failure, got %v", tc.names())
	}
	if repo.protokoll != nil {
		t.Error("Protokoll must not be persisted")
	}
	if g.Storage.Exists("protokolle/fsr/protokoll_2024_03_07.t2t") {
		t.Error("source file must be removed")
	}
}

func TestGenerateLatexDiagnostic(t *testing.T) {
	repo := &memoryRepository{meeting: testMeeting()}
	tc := &fakeToolchain{failPdf: errors.New("exit status 1")}
	g := newTestGenerator(t, repo, tc)

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.UploadSource{Data: []byte("Text")}})
	if err != nil {
		t.Fatalf("latex errors must not be fatal: %v", err)
	}
	if result.State != protokoll.StateToolchainError || result.Message != "! Undefined control sequence." {
		t.Errorf("unexpected result %+v", result)
	}
	if repo.protokoll != nil {
		t.Error("Protokoll must not be persisted")
	}
}

func TestGenerateToolchainFatal(t *testing.T) {
	existing := &models.Protokoll{Model: models.Model{ID: 3}, MeetingID: 42, T2T: "protokolle/fsr/protokoll_2024_03_07.t2t"}
	repo := &memoryRepository{meeting: testMeeting(), protokoll: existing}
	tc := &fakeToolchain{failTarget: "txt", stderr: "Traceback (most recent call last):\nKeyError: 'x'"}
	g := newTestGenerator(t, repo, tc)

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.UploadSource{Data: []byte("Text")}})
	if !errors.Is(err, protokoll.ErrToolchain) {
		t.Fatalf("expected a fatal toolchain error, got %v", err)
	}
	if result == nil || result.State != protokoll.StateToolchainFatal {
		t.Errorf("unexpected result %+v", result)
	}
	if repo.protokoll != nil || len(repo.deleted) != 1 {
		t.Errorf("expected the Protokoll record to be deleted, deleted=%v", repo.deleted)
	}
}

func TestGenerateWithoutSource(t *testing.T) {
	repo := &memoryRepository{meeting: testMeeting()}
	g := newTestGenerator(t, repo, &fakeToolchain{})
	g.Sources.Pad = stubPad{err: errors.New("connection refused")}

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.PadSource{PadID: "g$fsr"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != protokoll.StateNoProtokoll || repo.protokoll != nil {
		t.Errorf("unexpected result %+v", result)
	}

	result, err = g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.FileSource{}})
	if err != nil || result.State != protokoll.StateNoProtokoll {
		t.Errorf("expected no source without stored file, got %+v, %v", result, err)
	}
}

func TestGenerateAttachments(t *testing.T) {
	meeting := testMeeting()
	meeting.MeetingType.ProtokollAttachments = true
	repo := &memoryRepository{
		meeting: meeting,
		attachments: []models.Attachment{
			{Name: "A", File: "attachments/fsr/a.pdf", SortOrder: 0},
			{Name: "B", File: "attachments/fsr/b.pdf", SortOrder: 1},
		},
	}
	g := newTestGenerator(t, repo, &fakeToolchain{})

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.UploadSource{Data: []byte("[[ anhang 2 ]]")}})
	if err != nil || result.State != protokoll.StateArtifactsGenerated {
		t.Fatalf("unexpected result %+v, %v", result, err)
	}
	html, err := os.ReadFile(g.Storage.Path(protokoll.ArtifactPath(result.Protokoll.T2T, "html")))
	if err != nil {
		t.Fatal(err)
	}
	if want := "[B https://fs.example.org/media/attachments/fsr/b.pdf]"; !strings.Contains(string(html), want) {
		t.Errorf("expected %q in script:\n%s", want, html)
	}
}

func TestDelete(t *testing.T) {
	repo := &memoryRepository{meeting: testMeeting()}
	g := newTestGenerator(t, repo, &fakeToolchain{})

	result, err := g.Generate(context.Background(), protokoll.GenerateRequest{MeetingID: 42, Source: protokoll.UploadSource{Data: []byte("Text")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Delete(context.Background(), result.Protokoll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range protokoll.AllFiles(result.Protokoll.T2T) {
		if g.Storage.Exists(f) {
			t.Errorf("expected %s to be removed", f)
		}
	}
	if repo.protokoll != nil {
		t.Error("expected record to be deleted")
	}
}

package protokoll

import (
	"fachschaft-protokolle/internal/mail"
	"fachschaft-protokolle/internal/models"
	"strings"
	"text/template"
)

var mailBody = template.Must(template.New("mail.txt").Option("missingkey=error").ParseFS(embedded, mailTemplate))

type mailContext struct {
	Approved bool
	Sitzung  string
	URL      string
	Text     string
}

// MailContent builds the mail announcing the minutes to the committee's
// mailing list. text is the TXT artifact, url the public URL of the minutes.
func MailContent(meeting models.Meeting, p models.Protokoll, text, url, from string) (mail.Message, error) {
	var b strings.Builder
	err := mailBody.Execute(&b, mailContext{
		Approved: p.Approved,
		Sitzung:  MeetingReference(meeting),
		URL:      url,
		Text:     text,
	})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		Subject: Title(meeting, p.Approved),
		Text:    b.String(),
		From:    from,
		To:      meeting.MeetingType.MailingList,
	}, nil
}

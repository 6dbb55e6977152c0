package protokoll

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed templates
var embedded embed.FS

const (
	defaultScriptTemplate = "templates/script.t2t"
	defaultBlankTemplate  = "templates/vorlage.t2t"
	mailTemplate          = "templates/mail.txt"
	blankTemplateName     = "vorlage.t2t"
)

// TemplateLoader loads the outer script templates and the blank source
// templates of committees.
type TemplateLoader interface {
	// ScriptTemplate returns the named custom template, or the built-in one for "".
	ScriptTemplate(name string) (string, error)
	// BlankTemplate returns the committee's blank source template or the built-in one.
	BlankTemplate(meetingTypeID string) (string, error)
}

// DirTemplateLoader reads templates from a directory and falls back to the
// built-in templates.
type DirTemplateLoader struct {
	Dir string
}

// ensure DirTemplateLoader implements TemplateLoader
var _ TemplateLoader = &DirTemplateLoader{}

func (l *DirTemplateLoader) ScriptTemplate(name string) (string, error) {
	if len(name) == 0 {
		return readEmbedded(defaultScriptTemplate)
	}
	if filepath.Base(name) != name || name == ".." {
		return "", fmt.Errorf("invalid template name %q", name)
	}
	b, err := os.ReadFile(filepath.Join(l.Dir, name))
	if err != nil {
		return "", fmt.Errorf("loading script template %q: %w", name, err)
	}
	return string(b), nil
}

func (l *DirTemplateLoader) BlankTemplate(meetingTypeID string) (string, error) {
	if len(meetingTypeID) > 0 && filepath.Base(meetingTypeID) == meetingTypeID && len(l.Dir) > 0 {
		b, err := os.ReadFile(filepath.Join(l.Dir, meetingTypeID, blankTemplateName))
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("loading blank template of %q: %w", meetingTypeID, err)
		}
	}
	return readEmbedded(defaultBlankTemplate)
}

func readEmbedded(name string) (string, error) {
	b, err := embedded.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package protokoll

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const SourceExtension = "t2t"

var (
	// ArtifactExtensions are the published outputs of a build.
	ArtifactExtensions = []string{"html", "txt", "pdf"}
	// IntermediateExtensions are kept next to the artifacts.
	IntermediateExtensions = []string{"tex"}
	// TransientExtensions are pdflatex leftovers removed after every build.
	TransientExtensions = []string{"aux", "toc", "log", "out"}
)

// SourcePath is the canonical storage path of the markup source of a
// meeting. It is fixed when the Protokoll is created.
func SourcePath(meetingTypeID string, date time.Time) string {
	return path.Join("protokolle", meetingTypeID, datedName(date)+"."+SourceExtension)
}

// AttachmentPath is the storage path of the n-th attachment upload of a meeting.
func AttachmentPath(meetingTypeID string, date time.Time, n int, filename string) string {
	return path.Join("attachments", meetingTypeID, fmt.Sprintf("%s_%02d_%s", datedName(date), n, sanitizeFilename(filename)))
}

func datedName(date time.Time) string {
	return date.Format("protokoll_2006_01_02")
}

// Stem returns the storage path without its extension.
func Stem(file string) string {
	return strings.TrimSuffix(file, path.Ext(file))
}

// Filename returns the last element of the stem.
func Filename(file string) string {
	return path.Base(Stem(file))
}

// ArtifactPath returns the storage path of the artifact with the given extension.
func ArtifactPath(file, ext string) string {
	return Stem(file) + "." + ext
}

// AllFiles lists the source together with every derived file.
func AllFiles(file string) []string {
	files := []string{file}
	for _, group := range [][]string{ArtifactExtensions, IntermediateExtensions, TransientExtensions} {
		for _, ext := range group {
			files = append(files, ArtifactPath(file, ext))
		}
	}
	return files
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

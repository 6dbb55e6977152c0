package protokoll

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Storage maps storage relative paths onto the media directory and the
// media URL.
type Storage struct {
	Root string
	// BaseURL is the URL prefix of the media directory, e.g. "/media/".
	BaseURL string
	// SiteURL is prepended to relative media URLs to build absolute ones.
	SiteURL string
}

// Path returns the file system path of a storage path.
func (s Storage) Path(name string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// URL returns the media URL of a storage path.
func (s Storage) URL(name string) string {
	base := s.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + (&url.URL{Path: name}).EscapedPath()
}

// AbsoluteURL returns the media URL including scheme and host.
func (s Storage) AbsoluteURL(name string) string {
	u := s.URL(name)
	if strings.Contains(u, "://") {
		return u
	}
	return strings.TrimRight(s.SiteURL, "/") + u
}

func (s Storage) Read(name string) ([]byte, error) {
	return os.ReadFile(s.Path(name))
}

// Write replaces the file atomically and creates missing directories.
func (s Storage) Write(name string, data []byte) error {
	p := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Remove deletes the file. Missing files are not an error.
func (s Storage) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s Storage) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

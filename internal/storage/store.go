package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"webshot/internal/logging"
)

// ErrNotFound is returned when an artifact does not exist
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidName is returned for names that are empty or escape the store directory
var ErrInvalidName = errors.New("invalid artifact name")

// UnknownSource is reported for files that do not follow the {domain}__{ts} naming
const UnknownSource = "Unknown"

var artifactExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".pdf"}

// Artifact describes a stored capture
type Artifact struct {
	Filename  string    `json:"filename"`
	SourceURL string    `json:"url"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Created   time.Time `json:"created"`
}

// Store keeps rendered artifacts as flat files in one directory
type Store struct {
	dir    string
	logger logging.Logger
	mirror Mirror
}

// Mirror receives a copy of every saved artifact
type Mirror interface {
	Upload(name string, data []byte) (string, error)
	Delete(name string) error
}

// NewStore creates dir if needed
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &Store{dir: abs, logger: logger}, nil
}

// SetMirror attaches a remote copy target. Mirror failures are logged only.
func (s *Store) SetMirror(m Mirror) {
	s.mirror = m
}

// Dir returns the absolute storage directory
func (s *Store) Dir() string {
	return s.dir
}

// FilenameFor builds {host}__{unix seconds}.{ext} for rawURL, reduced to safe characters
func FilenameFor(rawURL, ext string, now time.Time) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	ext = strings.TrimPrefix(ext, ".")
	return SanitizeFilename(fmt.Sprintf("%s__%d.%s", host, now.Unix(), ext))
}

// SanitizeFilename keeps ASCII letters, digits, dot, dash and underscore, turns
// whitespace into underscores and trims leading and trailing dots and underscores.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")

	var b strings.Builder
	lastSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSpace {
				b.WriteByte('_')
			}
			lastSpace = true
			continue
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
		lastSpace = false
	}
	return strings.Trim(b.String(), "._")
}

// Path resolves name inside the store directory
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	path := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidName
	}
	return path, nil
}

// Save writes data atomically under name and mirrors it when a mirror is set
func (s *Store) Save(name string, data []byte) (*Artifact, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	if err := atomicWriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}

	s.logger.Info("Artifact saved", map[string]interface{}{
		"filename":   name,
		"size_bytes": len(data),
	})

	if s.mirror != nil {
		if remoteURL, err := s.mirror.Upload(name, data); err != nil {
			s.logger.Warn("Failed to mirror artifact", map[string]interface{}{
				"filename": name,
				"error":    err.Error(),
			})
		} else {
			s.logger.Debug("Artifact mirrored", map[string]interface{}{
				"filename": name,
				"url":      remoteURL,
			})
		}
	}

	return artifactFromInfo(info), nil
}

// List returns stored artifacts, newest first
func (s *Store) List() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isArtifactName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		artifacts = append(artifacts, *artifactFromInfo(info))
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		if artifacts[i].Created.Equal(artifacts[j].Created) {
			return artifacts[i].Filename > artifacts[j].Filename
		}
		return artifacts[i].Created.After(artifacts[j].Created)
	})

	return artifacts, nil
}

// Delete removes name from the store and from the mirror
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	s.logger.Info("Artifact deleted", map[string]interface{}{
		"filename": name,
	})

	if s.mirror != nil {
		if err := s.mirror.Delete(name); err != nil {
			s.logger.Warn("Failed to delete mirrored artifact", map[string]interface{}{
				"filename": name,
				"error":    err.Error(),
			})
		}
	}

	return nil
}

// Healthy reports whether the directory is still writable
func (s *Store) Healthy() error {
	f, err := os.CreateTemp(s.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// SourceOf returns the domain prefix of a stored filename
func SourceOf(name string) string {
	if i := strings.Index(name, "__"); i >= 0 {
		return name[:i]
	}
	return UnknownSource
}

// TypeOf classifies a filename as "pdf" or "image"
func TypeOf(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "pdf"
	}
	return "image"
}

func isArtifactName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	lower := strings.ToLower(name)
	for _, ext := range artifactExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func artifactFromInfo(info os.FileInfo) *Artifact {
	return &Artifact{
		Filename:  info.Name(),
		SourceURL: SourceOf(info.Name()),
		Type:      TypeOf(info.Name()),
		Size:      info.Size(),
		Created:   info.ModTime(),
	}
}

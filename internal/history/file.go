// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autopress/internal/models"
)

// maxLineBytes bounds a single history line; longer lines are skipped.
const maxLineBytes = 1024 * 1024

// naiveLayouts are the timestamp forms written by older versions of the
// publisher, which stored local time without an offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FileStore keeps the history as newline-delimited JSON, one record per line.
// Lines holding only a bare timestamp are accepted as legacy records.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the history file.
func (s *FileStore) Path() string {
	return s.path
}

// fileLine is the on-disk shape of a single record.
type fileLine struct {
	Timestamp   *string `json:"timestamp"`
	Filename    string  `json:"filename"`
	Title       string  `json:"title"`
	ProductLink string  `json:"product_link"`
}

// Load reads every well-formed record from the history file. Malformed lines
// are skipped with a warning. A missing file yields an empty history.
func (s *FileStore) Load(ctx context.Context) ([]models.PostRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.PostRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history open %s: %w", s.path, err)
	}
	defer f.Close()

	records := []models.PostRecord{}
	reader := bufio.NewReader(f)

	lineNo := 0
	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			if rec, ok := s.decodeLine(raw, lineNo); ok {
				records = append(records, rec)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("history read %s: %w", s.path, err)
		}
	}
	return records, nil
}

// Save overwrites the history file with records. The new content is written
// to a temporary file in the same directory and renamed into place, so an
// interrupted save leaves the previous history intact.
func (s *FileStore) Save(ctx context.Context, records []models.PostRecord) error {
	var buf bytes.Buffer
	for _, r := range records {
		line, err := json.Marshal(fileLine{
			Timestamp:   formatTimestamp(r.Timestamp),
			Filename:    r.Filename,
			Title:       r.Title,
			ProductLink: r.ProductLink,
		})
		if err != nil {
			return fmt.Errorf("history encode %q: %w", r.Filename, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("history mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("history temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("history write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("history sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("history close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("history rename: %w", err)
	}

	slog.Debug("post history saved", "file", s.path, "records", len(records))
	return nil
}

// decodeLine parses one raw history line. Blank lines are ignored;
// oversized or malformed lines are logged and skipped.
func (s *FileStore) decodeLine(raw []byte, lineNo int) (models.PostRecord, bool) {
	if len(raw) > maxLineBytes {
		slog.Warn("skipping oversized history line", "file", s.path, "line", lineNo, "bytes", len(raw))
		return models.PostRecord{}, false
	}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return models.PostRecord{}, false
	}
	rec, err := parseLine(line)
	if err != nil {
		slog.Warn("skipping malformed history line",
			"file", s.path,
			"line", lineNo,
			"content", line,
			"error", err,
		)
		return models.PostRecord{}, false
	}
	return rec, true
}

// parseLine decodes one history line, accepting both the JSON form and the
// legacy bare-timestamp form.
func parseLine(line string) (models.PostRecord, error) {
	if !strings.Contains(line, "{") {
		ts, err := ParseTimestamp(line)
		if err != nil {
			return models.PostRecord{}, err
		}
		return models.PostRecord{Timestamp: ts}, nil
	}

	var fl fileLine
	if err := json.Unmarshal([]byte(line), &fl); err != nil {
		return models.PostRecord{}, err
	}
	if fl.Timestamp == nil {
		return models.PostRecord{}, errors.New("missing timestamp")
	}
	ts, err := ParseTimestamp(*fl.Timestamp)
	if err != nil {
		return models.PostRecord{}, err
	}
	return models.PostRecord{
		Timestamp:   ts,
		Filename:    fl.Filename,
		Title:       fl.Title,
		ProductLink: fl.ProductLink,
	}, nil
}

// ParseTimestamp parses an ISO-8601 timestamp. Values with an offset are
// parsed as RFC 3339; values without one are taken as local time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func formatTimestamp(t time.Time) *string {
	s := t.Format(time.RFC3339Nano)
	return &s
}

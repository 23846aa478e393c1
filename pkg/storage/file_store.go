package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
	"github.com/kennyanoano/GeminiReImage/pkg/logger"
)

type historyFile struct {
	History []domain.HistoryEntry `json:"history"`
}

// FileStore is the persistence gateway: one JSON file per thread under
// threadsDir, one flat JSON file for the prompt history, and image files
// under imagesDir. It owns no state and never lets an I/O error escape as
// anything but a false/nil return.
type FileStore struct {
	threadsDir  string
	imagesDir   string
	historyPath string
}

func NewFileStore(threadsDir, imagesDir, historyPath string) *FileStore {
	return &FileStore{
		threadsDir:  threadsDir,
		imagesDir:   imagesDir,
		historyPath: historyPath,
	}
}

// SaveThread serializes the thread to its file. The write goes to a temp
// file first and is renamed into place, so readers never observe a partial
// write.
func (f *FileStore) SaveThread(threadID string, thread *domain.Thread) bool {
	data, err := json.MarshalIndent(thread, "", "  ")
	if err != nil {
		slog.Error("marshaling thread", "threadID", threadID, logger.Err(err))
		return false
	}

	if err := f.writeFileAtomic(f.threadPath(threadID), data); err != nil {
		slog.Error("saving thread", "threadID", threadID, logger.Err(err))
		return false
	}
	return true
}

// LoadThread returns nil if the file is absent, unreadable, unparsable or
// fails schema validation. Malformed content is reported, never fatal.
func (f *FileStore) LoadThread(threadID string) *domain.Thread {
	data, err := os.ReadFile(f.threadPath(threadID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("reading thread file", "threadID", threadID, logger.Err(err))
		}
		return nil
	}

	var thread domain.Thread
	if err := json.Unmarshal(data, &thread); err != nil {
		slog.Error("parsing thread file", "threadID", threadID, logger.Err(err))
		return nil
	}
	if err := thread.Validate(); err != nil {
		slog.Error("rejecting malformed thread file", "threadID", threadID, logger.Err(err))
		return nil
	}

	return &thread
}

// ListThreadIDs enumerates all persisted threads. Order is not guaranteed.
func (f *FileStore) ListThreadIDs() []string {
	entries, err := os.ReadDir(f.threadsDir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("listing threads directory", "dir", f.threadsDir, logger.Err(err))
		}
		return []string{}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids
}

// SaveHistory replaces the whole history file.
func (f *FileStore) SaveHistory(entries []domain.HistoryEntry) bool {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	data, err := json.MarshalIndent(historyFile{History: entries}, "", "  ")
	if err != nil {
		slog.Error("marshaling history", logger.Err(err))
		return false
	}

	if err := f.writeFileAtomic(f.historyPath, data); err != nil {
		slog.Error("saving history", logger.Err(err))
		return false
	}
	return true
}

// LoadHistory reads the whole history list. A missing file yields an empty
// list; a corrupt file is self-healed by rewriting an empty structure.
func (f *FileStore) LoadHistory() []domain.HistoryEntry {
	data, err := os.ReadFile(f.historyPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("reading history file", logger.Err(err))
		}
		return []domain.HistoryEntry{}
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		slog.Warn("history file is corrupt, resetting", logger.Err(err))
		f.SaveHistory(nil)
		return []domain.HistoryEntry{}
	}
	if hf.History == nil {
		hf.History = []domain.HistoryEntry{}
	}
	return hf.History
}

// ImageSavePath is pure: editNumber > 0 yields the versioned path for that
// edit, otherwise the thread's "latest" alias path.
func (f *FileStore) ImageSavePath(threadID string, editNumber int) string {
	if editNumber > 0 {
		return filepath.Join(f.imagesDir, fmt.Sprintf("%s_edit_%02d.png", threadID, editNumber))
	}
	return filepath.Join(f.imagesDir, fmt.Sprintf("%s_latest.png", threadID))
}

// SaveImage writes image bytes to path, creating directories on demand.
func (f *FileStore) SaveImage(path string, data []byte) bool {
	if err := f.writeFileAtomic(path, data); err != nil {
		slog.Error("saving image", "path", path, logger.Err(err))
		return false
	}
	return true
}

func (f *FileStore) threadPath(threadID string) string {
	return filepath.Join(f.threadsDir, threadID+".json")
}

func (f *FileStore) writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

package xlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/safearchive/zip"
	"github.com/google/safeopen"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbtree/lib/infra"
)

type fileSizeUnit uint64

const (
	B fileSizeUnit = 1 << (10 * iota)
	KB
	MB
	_maxFileSize = 1024 * MB
)

const (
	// Fixed width, so the backups sort by name.
	backupTimeFormat = "20060102T150405.000000000"
	zipTmpName       = "xlog-tmp.zip"
)

var fileSizeRegexp = regexp.MustCompile(`^(\d+)([kKmM]?[bB])$`)

func parseFileSize(size string) (uint64, error) {
	res := fileSizeRegexp.FindStringSubmatch(strings.TrimSpace(size))
	if len(res) < 3 {
		return 0, infra.NewErrorStack("[xlog] invalid file size unit: " + size)
	}
	var unit fileSizeUnit
	switch strings.ToUpper(res[2]) {
	case "B":
		unit = B
	case "KB":
		unit = KB
	case "MB":
		unit = MB
	}
	n, err := strconv.ParseUint(res[1], 10, 64)
	if err != nil || n == 0 {
		return 0, infra.NewErrorStack("[xlog] invalid file size: " + size)
	}
	if n*uint64(unit) > uint64(_maxFileSize) {
		return uint64(_maxFileSize), nil
	}
	return n * uint64(unit), nil
}

// FileCoreConfig describes a size rotated log file.
// Backups beyond FileMaxBackups are removed, or moved into
// FileZipName when FileCompressible is set.
type FileCoreConfig struct {
	FilePath         string `json:"filePath"`
	Filename         string `json:"filename"`
	FileMaxSize      string `json:"fileMaxSize"`
	FileZipName      string `json:"fileZipName"`
	FileMaxBackups   int    `json:"fileMaxBackups"`
	FileCompressible bool   `json:"fileCompressible"`
}

var (
	_ io.WriteCloser      = (*rotateFile)(nil)
	_ zapcore.WriteSyncer = (*rotateFile)(nil)
)

type rotateFile struct {
	lock       sync.Mutex
	dir        string
	filename   string
	zipName    string
	maxSize    uint64
	wroteSize  uint64
	maxBackups int
	compress   bool
	current    *os.File
}

// RotateFile opens the writer lazily on the first Write.
func RotateFile(cfg *FileCoreConfig) (io.WriteCloser, error) {
	return newRotateFile(cfg)
}

func newRotateFile(cfg *FileCoreConfig) (*rotateFile, error) {
	if cfg == nil || len(strings.TrimSpace(cfg.Filename)) == 0 {
		return nil, infra.NewErrorStack("[xlog] empty log filename")
	}
	if strings.ContainsRune(cfg.Filename, filepath.Separator) {
		return nil, infra.NewErrorStack("[xlog] log filename contains a path separator")
	}
	maxSize := cfg.FileMaxSize
	if len(maxSize) == 0 {
		maxSize = "100MB"
	}
	size, err := parseFileSize(maxSize)
	if err != nil {
		return nil, err
	}
	w := &rotateFile{
		dir:        cfg.FilePath,
		filename:   cfg.Filename,
		zipName:    cfg.FileZipName,
		maxSize:    size,
		maxBackups: cfg.FileMaxBackups,
		compress:   cfg.FileCompressible,
	}
	if len(w.dir) == 0 {
		w.dir = os.TempDir()
	}
	if w.compress && len(w.zipName) == 0 {
		w.zipName = strings.TrimSuffix(w.filename, filepath.Ext(w.filename)) + ".zip"
	}
	return w, nil
}

func (w *rotateFile) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.current == nil {
		if err := w.openOrCreate(); err != nil {
			return 0, err
		}
	}
	if w.wroteSize > 0 && w.wroteSize+uint64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.current.Write(p)
	w.wroteSize += uint64(n)
	return n, err
}

func (w *rotateFile) Sync() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.current == nil {
		return nil
	}
	return w.current.Sync()
}

func (w *rotateFile) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

func (w *rotateFile) openOrCreate() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[xlog] unable to create log dir "+w.dir)
	}
	f, err := safeopen.OpenFileBeneath(w.dir, w.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[xlog] unable to open log file "+w.path(w.filename))
	}
	info, err := f.Stat()
	if err != nil {
		return multierr.Append(infra.WrapErrorStack(err), f.Close())
	}
	if info.IsDir() {
		return multierr.Append(infra.NewErrorStack("[xlog] log file "+w.path(w.filename)+" is a dir"), f.Close())
	}
	w.current = f
	w.wroteSize = uint64(info.Size())
	return nil
}

func (w *rotateFile) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *rotateFile) backupName(ts time.Time) string {
	ext := filepath.Ext(w.filename)
	return strings.TrimSuffix(w.filename, ext) + "_" + ts.UTC().Format(backupTimeFormat) + ext
}

func (w *rotateFile) rotate() error {
	if err := w.current.Close(); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[xlog] unable to close log file "+w.path(w.filename))
	}
	w.current = nil

	ts := time.Now()
	name := w.backupName(ts)
	for {
		if _, err := os.Stat(w.path(name)); os.IsNotExist(err) {
			break
		}
		ts = ts.Add(time.Nanosecond)
		name = w.backupName(ts)
	}
	if err := os.Rename(w.path(w.filename), w.path(name)); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[xlog] unable to backup log file "+w.path(w.filename))
	}
	if err := w.openOrCreate(); err != nil {
		return err
	}
	if err := w.prune(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[xlog] prune log backups: %s\n", err)
	}
	return nil
}

// backups lists the rotated files, oldest first.
func (w *rotateFile) backups() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	ext := filepath.Ext(w.filename)
	prefix := strings.TrimSuffix(w.filename, ext) + "_"
	names := make([]string, 0, 8)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == w.filename || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		if _, err := time.Parse(backupTimeFormat, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)); err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (w *rotateFile) prune() error {
	names, err := w.backups()
	if err != nil {
		return err
	}
	redundant := len(names) - w.maxBackups
	if w.maxBackups <= 0 || redundant <= 0 {
		return nil
	}
	expired := names[:redundant]
	if w.compress {
		return w.archive(expired)
	}
	var merr error
	for _, name := range expired {
		merr = multierr.Append(merr, os.Remove(w.path(name)))
	}
	return merr
}

// archive moves the expired backups into the single zip of the log dir.
// The previous entries are copied into a fresh zip which then replaces it.
func (w *rotateFile) archive(expired []string) (err error) {
	var prev *zip.ReadCloser
	if info, statErr := os.Stat(w.path(w.zipName)); statErr == nil && !info.IsDir() {
		if prev, err = zip.OpenReader(w.path(w.zipName)); err != nil {
			return infra.WrapErrorStack(err)
		}
		defer func() {
			err = multierr.Append(err, prev.Close())
		}()
		prev.SetSecurityMode(prev.GetSecurityMode() | zip.MaximumSecurityMode)
	}

	tmp, err := safeopen.OpenFileBeneath(w.dir, zipTmpName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	zw := zip.NewWriter(tmp)
	if prev != nil {
		for _, f := range prev.File {
			if f.Mode().IsDir() {
				continue
			}
			if err = copyZipEntry(zw, f); err != nil {
				return multierr.Combine(err, zw.Close(), tmp.Close())
			}
		}
	}
	archived := make([]string, 0, len(expired))
	for _, name := range expired {
		if err = copyFileToZip(zw, w.dir, name); err != nil {
			return multierr.Combine(err, zw.Close(), tmp.Close())
		}
		archived = append(archived, name)
	}
	if err = multierr.Combine(zw.Close(), tmp.Close()); err != nil {
		return infra.WrapErrorStack(err)
	}
	if err = os.Rename(w.path(zipTmpName), w.path(w.zipName)); err != nil {
		return infra.WrapErrorStack(err)
	}
	for _, name := range archived {
		err = multierr.Append(err, os.Remove(w.path(name)))
	}
	return err
}

func copyZipEntry(zw *zip.Writer, f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	defer func() {
		_ = r.Close()
	}()
	dst, err := zw.CreateHeader(&zip.FileHeader{
		Name:   f.Name,
		Method: f.Method,
	})
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	_, err = io.Copy(dst, r)
	return infra.WrapErrorStack(err)
}

func copyFileToZip(zw *zip.Writer, dir, name string) error {
	src, err := safeopen.OpenBeneath(dir, name)
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	defer func() {
		_ = src.Close()
	}()
	dst, err := zw.Create(name)
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	_, err = io.Copy(dst, src)
	return infra.WrapErrorStack(err)
}

package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Cell is a raw spreadsheet value: nil, string, a numeric type, bool or time.Time.
type Cell = any

// Decoder turns a spreadsheet file into rows of cells, first sheet only.
type Decoder interface {
	Decode(r io.Reader) ([][]Cell, error)
	Format() string
	Extensions() []string
}

// ErrUnsupportedFile means no decoder handles the file's extension.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ErrUnreadableFile means a decoder could not read the file.
var ErrUnreadableFile = errors.New("cannot read spreadsheet")

// Registry maps file extensions to decoders.
type Registry struct {
	byExt map[string]Decoder
}

// FileInfo describes an importable file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty decoder registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Decoder)}
}

// Register adds a decoder under each of its extensions. Panics on duplicates.
func (r *Registry) Register(d Decoder) {
	for _, ext := range d.Extensions() {
		key := normalizeExt(ext)
		if _, ok := r.byExt[key]; ok {
			panic("duplicate decoder extension: " + key)
		}
		r.byExt[key] = d
	}
}

// Get returns the decoder for an extension (".xlsx" or "xlsx"), or nil.
func (r *Registry) Get(ext string) Decoder {
	return r.byExt[normalizeExt(ext)]
}

// ForFile returns the decoder matching the file name's extension.
func (r *Registry) ForFile(name string) (Decoder, error) {
	ext := filepath.Ext(name)
	d := r.Get(ext)
	if d == nil {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFile, ext, strings.Join(r.Extensions(), ", "))
	}
	return d, nil
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry returns a registry with all built-in decoders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXDecoder{})
	r.Register(&XLSDecoder{})
	r.Register(&CSVDecoder{})
	return r
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// importDir is the subdirectory for files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

// Scan returns the files in <dataDir>/import/ that reg can decode.
func Scan(dataDir string, reg *Registry) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if reg.Get(filepath.Ext(e.Name())) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

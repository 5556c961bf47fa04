package loader

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/cenkalti/backoff/v4"
)

// loaderBackend defines the generic interface for reading icon images from a source.
// Concrete implementations handle where the bytes come from.
type loaderBackend interface {
	// Load decodes the icon identified by ref.
	// Errors that retrying cannot fix are wrapped with backoff.Permanent.
	//
	// Parameters:
	//   - ref: the icon reference
	//
	// Returns:
	//   - image.Image: the decoded icon
	//   - error: error if the icon cannot be read or decoded
	Load(ref string) (image.Image, error)

	// LoadReader decodes an icon from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing encoded image data
	//
	// Returns:
	//   - image.Image: the decoded icon
	//   - error: error if decoding fails
	LoadReader(r io.Reader) (image.Image, error)
}

// fileLoaderBackend reads icons from disk. Relative references resolve against root.
type fileLoaderBackend struct {
	root string
}

func newFileLoaderBackend(root string) *fileLoaderBackend {
	return &fileLoaderBackend{root: root}
}

func (b *fileLoaderBackend) Load(ref string) (image.Image, error) {
	path := ref
	if !filepath.IsAbs(path) && b.root != "" {
		path = filepath.Join(b.root, path)
	}
	img, err := common.ImportedIcon{Path: path}.Decode()
	if err != nil {
		if errors.Is(err, common.ErrIconDecode) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return img, nil
}

func (b *fileLoaderBackend) LoadReader(r io.Reader) (image.Image, error) {
	return decodeReader(r)
}

// memoryLoaderBackend serves icons from encoded bytes registered up front.
type memoryLoaderBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemoryLoaderBackend() *memoryLoaderBackend {
	return &memoryLoaderBackend{data: make(map[string][]byte)}
}

func (b *memoryLoaderBackend) put(ref string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[ref] = data
}

func (b *memoryLoaderBackend) Load(ref string) (image.Image, error) {
	b.mu.RLock()
	data, ok := b.data[ref]
	b.mu.RUnlock()
	if !ok {
		return nil, backoff.Permanent(fmt.Errorf("icon %q: %w", ref, fs.ErrNotExist))
	}
	img, err := common.ImportedIcon{Data: data}.Decode()
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return img, nil
}

func (b *memoryLoaderBackend) LoadReader(r io.Reader) (image.Image, error) {
	return decodeReader(r)
}

func decodeReader(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon: %w", err)
	}
	img, err := common.ImportedIcon{Data: data}.Decode()
	if err != nil {
		return nil, err
	}
	return img, nil
}

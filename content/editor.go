package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrUnknownBlock is returned when an operation names a block id that is
	// not in the document.
	ErrUnknownBlock = errors.New("content: unknown block")
	// ErrUpload wraps failures reported by the Uploader.
	ErrUpload = errors.New("content: upload failed")
)

// Direction selects the neighbour Move swaps with.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection maps "up"/"down" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return 0, false
}

// Upload is a file handed to the Uploader.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores a file and returns a publicly resolvable URL for it.
type Uploader interface {
	Upload(ctx context.Context, f Upload) (string, error)
}

// Editor holds one mutable block sequence. Every operation is atomic with
// respect to the others; uploads run without holding the lock.
type Editor struct {
	mu       sync.Mutex
	blocks   []Block
	uploader Uploader
}

// NewEditor returns an editor over a copy of blocks. uploader may be nil
// when file-backed population is not needed.
func NewEditor(blocks []Block, uploader Uploader) *Editor {
	cp := make([]Block, len(blocks))
	copy(cp, blocks)
	return &Editor{blocks: cp, uploader: uploader}
}

// Blocks returns a snapshot of the current sequence.
func (e *Editor) Blocks() []Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]Block, len(e.blocks))
	copy(cp, e.blocks)
	return cp
}

// Len returns the number of blocks.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.blocks)
}

// Encode serializes the whole sequence for submission.
func (e *Editor) Encode() (string, error) {
	return Encode(e.Blocks())
}

// Insert appends a new empty block of kind.
func (e *Editor) Insert(kind Kind) (Block, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := New(kind)
	if b == nil {
		return nil, fmt.Errorf("content: cannot insert block of kind %q", kind)
	}
	e.blocks = append(e.blocks, b)
	return b, nil
}

// InsertAfter inserts a new empty block immediately after index. An index of
// -1 inserts at the start; an index at or past the last block appends.
func (e *Editor) InsertAfter(kind Kind, index int) (Block, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := New(kind)
	if b == nil {
		return nil, fmt.Errorf("content: cannot insert block of kind %q", kind)
	}
	pos := index + 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(e.blocks) {
		pos = len(e.blocks)
	}
	e.blocks = append(e.blocks, nil)
	copy(e.blocks[pos+1:], e.blocks[pos:])
	e.blocks[pos] = b
	return b, nil
}

// Update applies p to the block with id. It reports false if no block matched.
func (e *Editor) Update(id string, p Patch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return false
	}
	e.blocks[i] = p.Apply(e.blocks[i])
	return true
}

// Remove deletes the block with id. It reports false if no block matched.
func (e *Editor) Remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return false
	}
	e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
	return true
}

// Move swaps the block at index with its neighbour in dir. Moves past either
// end of the sequence are no-ops and report false.
func (e *Editor) Move(index int, dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.blocks) {
		return false
	}
	j := index - 1
	if dir == Down {
		j = index + 1
	}
	if j < 0 || j >= len(e.blocks) {
		return false
	}
	e.blocks[index], e.blocks[j] = e.blocks[j], e.blocks[index]
	return true
}

// PopulateFromUpload stores f through the uploader and sets the returned URL
// as the content of block id. On failure the block is left unchanged and the
// error is returned wrapped in ErrUpload. If the block is removed while the
// upload is in flight the URL is discarded.
func (e *Editor) PopulateFromUpload(ctx context.Context, id string, f Upload) (string, error) {
	e.mu.Lock()
	known := e.indexOf(id) >= 0
	e.mu.Unlock()
	if !known {
		return "", fmt.Errorf("%w: %s", ErrUnknownBlock, id)
	}
	if e.uploader == nil {
		return "", fmt.Errorf("%w: no uploader configured", ErrUpload)
	}

	url, err := e.uploader.Upload(ctx, f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	e.Update(id, Patch{Content: &url})
	return url, nil
}

func (e *Editor) indexOf(id string) int {
	for i, b := range e.blocks {
		if b.ID() == id {
			return i
		}
	}
	return -1
}

// Package maps holds the ordered set of ground map textures and the cycling between them.
package maps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ErrNoTextures is returned by Load when the set was created without any paths.
var ErrNoTextures = errors.New("no map textures configured")

// slot is one configured texture. A slot whose decode failed stays in the set but is never selected.
type slot struct {
	path    string
	texture *common.TextureStagingData
	err     error
}

type textureSetImpl struct {
	mu *sync.Mutex

	slots   []slot
	current int

	flipY   bool
	workers int
	logger  *slog.Logger
}

// TextureSet is an ordered list of map textures with a current selection.
type TextureSet interface {
	// Load decodes every texture in parallel. Slots that fail to decode are marked invalid
	// and logged; they do not fail the load. The first valid slot becomes current.
	//
	// Parameters:
	//   - ctx: cancels outstanding decodes
	//
	// Returns:
	//   - error: ErrNoTextures for an empty set, or the context error if cancelled
	Load(ctx context.Context) error

	// Len returns the number of configured slots, valid or not.
	Len() int

	// ValidCount returns the number of slots that decoded successfully.
	ValidCount() int

	// Path returns the file path of slot i.
	Path(i int) string

	// Valid reports whether slot i decoded successfully.
	Valid(i int) bool

	// Err returns the decode error of slot i, or nil.
	Err(i int) error

	// CurrentIndex returns the selected slot.
	CurrentIndex() int

	// Current returns the selected texture.
	//
	// Returns:
	//   - *common.TextureStagingData: the pixels, or nil if the selected slot is invalid
	//   - bool: true if the selected slot is valid
	Current() (*common.TextureStagingData, bool)

	// Next advances to the next valid slot, wrapping around. When no slot is valid the
	// selection is left unchanged.
	//
	// Returns:
	//   - bool: true if the selection now points at a valid slot
	Next() bool
}

var _ TextureSet = &textureSetImpl{}

// NewTextureSet creates an unloaded set over the given paths.
//
// Parameters:
//   - paths: texture file paths in cycling order
//   - options: functional options to configure the set
//
// Returns:
//   - TextureSet: the newly created set
func NewTextureSet(paths []string, options ...TextureSetOption) TextureSet {
	ts := &textureSetImpl{
		mu:      &sync.Mutex{},
		slots:   make([]slot, len(paths)),
		flipY:   true,
		workers: 4,
		logger:  slog.Default(),
	}
	for i, p := range paths {
		ts.slots[i].path = p
	}

	for _, option := range options {
		option(ts)
	}

	return ts
}

func (ts *textureSetImpl) Load(ctx context.Context) error {
	ts.mu.Lock()
	n := len(ts.slots)
	paths := make([]string, n)
	for i := range ts.slots {
		paths[i] = ts.slots[i].path
	}
	flipY, workers := ts.flipY, ts.workers
	ts.mu.Unlock()

	if n == 0 {
		return ErrNoTextures
	}

	results := make([]slot, n)
	pool := worker.NewDynamicWorkerPool(max(1, min(workers, n)), n, 1*time.Second)

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		id := i
		path := p
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				results[id].path = path
				if err := ctx.Err(); err != nil {
					results[id].err = err
					return nil, nil
				}
				tex, err := common.DecodeImageFile(path, flipY)
				if err != nil {
					results[id].err = err
					return nil, nil
				}
				results[id].texture = &tex
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("map texture load cancelled: %w", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.slots = results
	ts.current = 0
	valid := 0
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].err != nil {
			ts.logger.Warn("map texture unavailable", "path", results[i].path, "error", results[i].err)
			continue
		}
		valid++
		ts.current = i
		ts.logger.Debug("map texture loaded", "path", results[i].path,
			"width", results[i].texture.Width, "height", results[i].texture.Height)
	}
	if valid == 0 {
		ts.logger.Warn("no valid map textures", "configured", n)
	}
	return nil
}

func (ts *textureSetImpl) Len() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.slots)
}

func (ts *textureSetImpl) ValidCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	count := 0
	for i := range ts.slots {
		if ts.valid(i) {
			count++
		}
	}
	return count
}

func (ts *textureSetImpl) Path(i int) string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if i < 0 || i >= len(ts.slots) {
		return ""
	}
	return ts.slots[i].path
}

func (ts *textureSetImpl) Valid(i int) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.valid(i)
}

// valid reports whether slot i holds decoded pixels.
// Caller must hold the mutex.
func (ts *textureSetImpl) valid(i int) bool {
	return i >= 0 && i < len(ts.slots) && ts.slots[i].err == nil && ts.slots[i].texture.Valid()
}

func (ts *textureSetImpl) Err(i int) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if i < 0 || i >= len(ts.slots) {
		return fmt.Errorf("map texture index %d out of range", i)
	}
	return ts.slots[i].err
}

func (ts *textureSetImpl) CurrentIndex() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.current
}

func (ts *textureSetImpl) Current() (*common.TextureStagingData, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if !ts.valid(ts.current) {
		return nil, false
	}
	return ts.slots[ts.current].texture, true
}

func (ts *textureSetImpl) Next() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	n := len(ts.slots)
	if n == 0 {
		return false
	}
	start := ts.current
	for step := 1; step <= n; step++ {
		candidate := (start + step) % n
		if ts.valid(candidate) {
			ts.current = candidate
			ts.logger.Info("switched map", "path", ts.slots[candidate].path)
			return true
		}
	}
	ts.logger.Warn("no valid map textures to switch to")
	return false
}

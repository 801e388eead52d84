// internal/catalog/catalog.go
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/brokeio/brokeio/internal/models"
)

// ErrUnknownBoard is returned when a board id does not resolve to an enabled board.
var ErrUnknownBoard = errors.New("board does not exist or is disabled")

// Catalog is the registry of immutable board definitions. Boards are added by
// an administrator or importer before play and are read-only at game time.
type Catalog struct {
	mu     sync.Mutex
	boards map[uuid.UUID]*models.Board
}

func New() *Catalog {
	return &Catalog{boards: make(map[uuid.UUID]*models.Board)}
}

// AddBoard validates and registers a board. Property tiles must carry
// economics; positions must be non-empty.
func (c *Catalog) AddBoard(b *models.Board) error {
	if len(b.Positions) == 0 {
		return fmt.Errorf("board %q has no positions", b.Name)
	}
	for i, tc := range b.Positions {
		if tc.Type == models.TileProperty && tc.Property == nil {
			return fmt.Errorf("board %q position %d is a property without economics", b.Name, i)
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.boards[b.ID]; exists {
		return fmt.Errorf("board %s already registered", b.ID)
	}
	b.Enabled = true
	c.boards[b.ID] = b
	return nil
}

// Board returns the enabled board with the given id, or ErrUnknownBoard.
func (c *Catalog) Board(id uuid.UUID) (*models.Board, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.boards[id]
	if !ok || !b.Enabled {
		return nil, ErrUnknownBoard
	}
	return b, nil
}

// Disable hides a board from new sessions. Sessions already bound to it keep
// their snapshot and are unaffected.
func (c *Catalog) Disable(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.boards[id]; ok {
		b.Enabled = false
	}
}

// List returns all enabled boards.
func (c *Catalog) List() []*models.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Board, 0, len(c.boards))
	for _, b := range c.boards {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

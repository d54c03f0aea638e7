// Package files is the receipt-file collaborator. The ledger engine
// only ever supplies bare file names, never paths or content; deleting
// an orphaned receipt is best-effort and must not fail a transaction.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store abstracts receipt file storage.
type Store interface {
	Delete(name string) error
	Exists(name string) bool
}

// NewName returns a unique stored name for an uploaded receipt,
// keeping the original extension.
func NewName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// Disk stores receipts as flat files under a single directory.
type Disk struct {
	root string
}

// NewDisk creates the receipt directory if needed.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &Disk{root: root}, nil
}

// Delete removes a stored receipt. A missing file is not an error.
func (d *Disk) Delete(name string) error {
	path, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete receipt %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a stored receipt is present.
func (d *Disk) Exists(name string) bool {
	path, err := d.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// resolve rejects anything that is not a bare file name.
func (d *Disk) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid receipt file name %q", name)
	}
	return filepath.Join(d.root, name), nil
}

var _ Store = (*Disk)(nil)

package lode

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/justapithecus/lode/lode"
)

// FileWriter writes sidecar files next to a session's fixtures.
type FileWriter interface {
	// PutFile writes data under the session's files/ prefix.
	// The filename must not contain path separators or "..".
	PutFile(ctx context.Context, filename string, data []byte) error
}

var _ FileWriter = (*Client)(nil)

// PutFile stores a sidecar file, such as the effective config, directly in
// the Lode store. Files bypass dataset snapshots entirely.
func (c *Client) PutFile(ctx context.Context, filename string, data []byte) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	store, err := c.getOrCreateStore()
	if err != nil {
		return WrapInitError(err, c.config.Dataset)
	}
	path := c.FilePath(filename)
	if err := store.Put(ctx, path, bytes.NewReader(data)); err != nil {
		return wrap("put", err, path)
	}
	return nil
}

// FilePath computes the store path for a sidecar file.
// Format: datasets/<dataset>/files/day=<d>/session=<s>/<filename>
func (c *Client) FilePath(filename string) string {
	return fmt.Sprintf("datasets/%s/files/day=%s/session=%s/%s",
		c.config.Dataset, c.config.Day, c.config.SessionID, filename)
}

func (c *Client) getOrCreateStore() (lode.Store, error) {
	c.storeOnce.Do(func() {
		c.store, c.storeErr = c.storeFactory()
	})
	return c.store, c.storeErr
}

func validateFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("filename is required")
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return fmt.Errorf("invalid filename %q", name)
	}
	return nil
}

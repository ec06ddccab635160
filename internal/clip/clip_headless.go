package clip

import "fmt"

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, etc.).
// It always reads empty and refuses writes.
type headlessBackend struct{}

// NewHeadless returns the no-op backend.
func NewHeadless() Backend { return headlessBackend{} }

func (headlessBackend) Name() string              { return "headless (no-op)" }
func (headlessBackend) ReadText() (string, error) { return "", nil }
func (headlessBackend) Close()                    {}

func (headlessBackend) WriteText(string) error {
	return fmt.Errorf("%w: no display available", ErrAccess)
}

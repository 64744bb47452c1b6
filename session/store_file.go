package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/pkg/errors"
)

// FileTokenStore keeps the session token in a single file so a login survives restarts.
// Writes go through a temp file and a rename so a crash never leaves a half-written token.
type FileTokenStore struct {
	path string
}

var _ TokenStore = (*FileTokenStore)(nil)

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", apperrors.ErrNoToken
	}
	if err != nil {
		return "", errors.Wrap(err, "FileTokenStore.Load")
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", apperrors.ErrNoToken
	}
	return token, nil
}

func (s *FileTokenStore) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "FileTokenStore.Save MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "FileTokenStore.Save CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileTokenStore.Save Write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "FileTokenStore.Save Close")
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errors.Wrap(err, "FileTokenStore.Save Chmod")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "FileTokenStore.Save Rename")
}

func (s *FileTokenStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileTokenStore.Delete")
	}
	return nil
}

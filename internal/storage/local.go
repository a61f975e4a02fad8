package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Local struct {
	BaseDir string
}

func NewLocal(baseDir string) *Local {
	return &Local{BaseDir: baseDir}
}

func (l *Local) Store(ctx context.Context, payload []byte) (string, error) {
	_ = ctx

	key := deliveryKey(time.Now(), uuid.NewString())
	dstPath := filepath.Join(l.BaseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dstPath, payload, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	_ = ctx
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid archive key: %s", key)
	}
	return os.Remove(filepath.Join(l.BaseDir, clean))
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }

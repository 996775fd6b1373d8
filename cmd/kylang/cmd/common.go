package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	"github.com/msto63/kylang/internal/history"
)

// readSource reads a program from path, or from stdin when path is "-"
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", mdwerror.Wrap(err, "failed to read program from stdin").
				WithCode(mdwerror.CodeIOError)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", mdwerror.Newf("file not found: %s", path).
			WithCode(mdwerror.CodeFileNotFound).
			WithDetail("path", path)
	}
	if err != nil {
		return "", mdwerror.Wrap(err, "failed to read "+path).
			WithCode(mdwerror.CodeIOError).
			WithDetail("path", path)
	}
	return string(data), nil
}

// openHistory opens the sqlite run history configured in [history]
func openHistory() (history.Store, error) {
	path := appConfig.History.Path
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, mdwerror.Wrap(err, "failed to create history directory").
				WithCode(mdwerror.CodeIOError).
				WithDetail("path", dir)
		}
	}
	store, err := history.NewSQLiteStore(history.SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

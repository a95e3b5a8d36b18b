package logging

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type impl struct {
	name string
	*zap.SugaredLogger
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return &impl{name: newName, SugaredLogger: imp.SugaredLogger.Named(subname)}
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.SugaredLogger.Desugar()
}

// Sync flushes buffered entries. Syncing a console sink returns EINVAL/ENOTTY on most
// platforms, which is not worth reporting.
func (imp *impl) Sync() error {
	err := imp.SugaredLogger.Sync()
	if err == nil {
		return nil
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return nil
	}
	return err
}

package helpertest

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/ginkgo/v2"
)

type TmpFolder struct {
	Path  string
	Error error
}

type TmpFile struct {
	Path   string
	Error  error
	Folder *TmpFolder
}

// NewTmpFolder creates a temp folder which is removed after the current spec
func NewTmpFolder(prefix string) *TmpFolder {
	if len(prefix) == 0 {
		prefix = "namedcache"
	}

	path, err := os.MkdirTemp("", prefix)

	res := &TmpFolder{
		Path:  path,
		Error: err,
	}

	ginkgo.DeferCleanup(res.Clean)

	return res
}

func (tf *TmpFolder) Clean() error {
	if len(tf.Path) > 0 {
		return os.RemoveAll(tf.Path)
	}

	return nil
}

// CreateStringFile writes the lines joined by newlines
func (tf *TmpFolder) CreateStringFile(name string, lines ...string) *TmpFile {
	f, err := os.Create(filepath.Join(tf.Path, name))
	if err != nil {
		return &TmpFile{Error: err, Folder: tf}
	}

	w := bufio.NewWriter(f)

	_, err = w.WriteString(strings.Join(lines, "\n"))
	if err == nil {
		err = w.Flush()
	}

	f.Close()

	if err == nil {
		_, err = os.Stat(f.Name())
	}

	return &TmpFile{
		Path:   f.Name(),
		Error:  err,
		Folder: tf,
	}
}

func (tf *TmpFolder) JoinPath(name string) string {
	return filepath.Join(tf.Path, name)
}

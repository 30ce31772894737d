package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cottand/strux/strux"
	"github.com/pkg/errors"
)

// sourceExtension marks the files picked up when a directory is given
const sourceExtension = ".ts"

// readFiles reads the files named in args. Directories contribute every
// source file below them.
func readFiles(args []string) ([]strux.File, error) {
	var files []strux.File
	add := func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		files = append(files, strux.File{Name: filepath.ToSlash(filepath.Clean(path)), Source: string(data)})
		return nil
	}
	for _, arg := range args {
		stat, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrap(err, "could not stat target")
		}
		if !stat.IsDir() {
			if err := add(arg); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, sourceExtension) {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", arg)
		}
	}
	return files, nil
}

// loadProgram reads the files in args into a new session
func loadProgram(args []string) (*strux.Program, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	files, err := readFiles(args)
	if err != nil {
		return nil, err
	}
	return strux.NewProgram(files, strux.FilesResolver(files), opts)
}

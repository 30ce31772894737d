package strux

import (
	"path"
	"strings"
)

// ModuleResolver maps an import specifier, as written in the file called from,
// to the name of one of the program's files
type ModuleResolver interface {
	Resolve(specifier, from string) (string, bool)
}

// MapResolver resolves specifiers through a fixed table. Relative specifiers
// ("./x", "../x") that are not in the table are joined to the directory of the
// importing file and tried with and without a ".ts" extension.
type MapResolver map[string]string

func (m MapResolver) Resolve(specifier, from string) (string, bool) {
	if name, ok := m[specifier]; ok {
		return name, true
	}
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false
	}
	joined := path.Join(path.Dir(from), specifier)
	for _, candidate := range []string{joined, joined + ".ts"} {
		if name, ok := m[candidate]; ok {
			return name, true
		}
	}
	return "", false
}

// FilesResolver resolves relative specifiers against the given file names
func FilesResolver(files []File) MapResolver {
	m := make(MapResolver, len(files))
	for _, f := range files {
		m[path.Clean(f.Name)] = f.Name
	}
	return m
}

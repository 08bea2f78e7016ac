package component

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/spf13/afero"
)

var nameDecl = regexp.MustCompile(`(?m)^\s*NAME\s*:?=\s*(\S+)\s*$`)

// excluded directories never hold component makefiles
var excludedDirs = []string{"out", "build", filepath.Join("tools", "codesync")}

// Dependencies returns the components listed in $(NAME)_COMPONENTS of a
// component makefile. A missing makefile has no dependencies.
func Dependencies(fs afero.Fs, makefile string) ([]string, error) {
	if filepath.Ext(makefile) != paths.MakefileExt {
		return nil, nil
	}
	data, err := afero.ReadFile(fs, makefile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", makefile)
	}

	var deps []string
	for _, line := range logicalLines(data) {
		if strings.HasPrefix(strings.TrimSpace(line), "#") || !strings.Contains(line, "$(NAME)_COMPONENTS") {
			continue
		}
		value := line[strings.LastIndex(line, "=")+1:]
		deps = append(deps, strings.Fields(value)...)
	}
	return deps, nil
}

// logicalLines joins backslash-continued lines
func logicalLines(data []byte) []string {
	var (
		lines   []string
		current strings.Builder
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasSuffix(line, `\`) {
			current.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		current.WriteString(line)
		lines = append(lines, current.String())
		current.Reset()
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// DeclaredName returns the NAME declared by a makefile, if exactly one
func DeclaredName(fs afero.Fs, makefile string) (string, bool) {
	data, err := afero.ReadFile(fs, makefile)
	if err != nil {
		return "", false
	}
	matches := nameDecl.FindAllSubmatch(data, -1)
	if len(matches) != 1 {
		return "", false
	}
	return string(matches[0][1]), true
}

// Components scans root for component makefiles and returns a map from
// makefile path (slash separated, relative to root) to declared NAME
func Components(fs afero.Fs, root string) (map[string]string, error) {
	if ok, _ := afero.IsDir(fs, root); !ok {
		return nil, errors.Newf(errors.ErrNotFound, "component directory %s does not exist", root).
			WithDetail("path", root)
	}

	found := map[string]string{}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if info.IsDir() {
			if isExcluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != paths.MakefileExt {
			return nil
		}
		if name, ok := DeclaredName(fs, path); ok {
			found[filepath.ToSlash(rel)] = name
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to scan %s", root)
	}
	return found, nil
}

func isExcluded(rel string) bool {
	for _, ex := range excludedDirs {
		if rel == ex || strings.HasPrefix(rel, ex+string(filepath.Separator)) {
			return true
		}
	}
	// out/ and build/ directories are skipped at any depth
	base := filepath.Base(rel)
	return base == "out" || base == "build"
}

// sortedKeys returns the keys of m in order
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

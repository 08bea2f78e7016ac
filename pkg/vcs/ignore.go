package vcs

import (
	"os"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/spf13/afero"
)

func readIgnoreLines(fs afero.Fs, file string) ([]string, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", file)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

func writeIgnoreLines(fs afero.Fs, file string, lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := filesystem.WriteFileAtomic(fs, file, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", file)
	}
	return nil
}

// addIgnoreLine appends entry once. header is written first when the file
// is created.
func addIgnoreLine(fs afero.Fs, file, entry, header string) error {
	lines, err := readIgnoreLines(fs, file)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == entry {
			return nil
		}
	}
	if len(lines) == 0 && header != "" {
		lines = append(lines, header)
	}
	return writeIgnoreLines(fs, file, append(lines, entry))
}

func removeIgnoreLine(fs afero.Fs, file, entry string) error {
	lines, err := readIgnoreLines(fs, file)
	if err != nil || lines == nil {
		return err
	}
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != entry {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(lines) {
		return nil
	}
	return writeIgnoreLines(fs, file, kept)
}

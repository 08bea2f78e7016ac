package config

import (
	"bytes"
	"os"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// ReadProgramFile parses a .aos file. A missing file yields an empty map.
func ReadProgramFile(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", path)
	}

	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to parse %s", path)
	}
	return values, nil
}

// WriteProgramFile replaces the content of a .aos file with values
func WriteProgramFile(fs afero.Fs, path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to encode %s", path)
	}
	if content != "" {
		content += "\n"
	}
	if err := filesystem.WriteFileAtomic(fs, path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to write %s", path)
	}
	return nil
}

// SetProgramValue sets a single key in a .aos file, creating it if needed
func SetProgramValue(fs afero.Fs, path, key, value string) error {
	values, err := ReadProgramFile(fs, path)
	if err != nil {
		return err
	}
	if current, ok := values[key]; ok && current == value {
		return nil
	}
	values[key] = value
	return WriteProgramFile(fs, path, values)
}

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml exports the YAML file at path into the environment and then
// fills cfg from its env/default struct tags. A missing file is not an error:
// the environment and tag defaults still apply.
func LoadAndParseYaml(path string, cfg any) error {
	if err := LoadYamlFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return ParseEnv(cfg)
}

// LoadYamlFile reads a flat/nested YAML file and sets one environment variable
// per leaf key. Nested keys are joined with "_" and upper-cased, so
//
//	database:
//	  host: localhost
//
// becomes DATABASE_HOST=localhost. Values of the form ${VAR:-default} are
// resolved against the current environment. Variables that are already set
// are never overwritten.
func LoadYamlFile(path string) error {
	if path == "" {
		return ErrNoFilePath
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}
	defer file.Close()

	var (
		scanner  = bufio.NewScanner(file)
		sections []string
		indents  []int
	)

	for scanner.Scan() {
		line := scanner.Text()

		content := strings.TrimSpace(line)
		if content == "" || strings.HasPrefix(content, "#") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		for len(indents) > 0 && indent <= indents[len(indents)-1] {
			indents = indents[:len(indents)-1]
			sections = sections[:len(sections)-1]
		}

		key, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if value == "" {
			sections = append(sections, key)
			indents = append(indents, indent)
			continue
		}

		envKey := strings.ToUpper(strings.Join(append(append([]string{}, sections...), key), "_"))
		if os.Getenv(envKey) != "" {
			continue
		}
		if err := os.Setenv(envKey, expand(unquote(value))); err != nil {
			return fmt.Errorf("could not set env var %s: %w", envKey, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading YAML file: %w", err)
	}

	return nil
}

func unquote(v string) string {
	if i := strings.Index(v, " #"); i >= 0 && !strings.HasPrefix(v, `"`) && !strings.HasPrefix(v, `'`) {
		v = strings.TrimSpace(v[:i])
	}
	return strings.Trim(v, `"'`)
}

// expand resolves ${VAR:-default}.
func expand(v string) string {
	if !strings.HasPrefix(v, "${") || !strings.HasSuffix(v, "}") {
		return v
	}
	name, def, _ := strings.Cut(v[2:len(v)-1], ":-")
	if env := os.Getenv(strings.TrimSpace(name)); env != "" {
		return env
	}
	return strings.TrimSpace(def)
}

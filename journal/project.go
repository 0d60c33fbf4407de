package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxProjectAscent bounds how far DetectProject walks toward the
// filesystem root looking for a project manifest.
const maxProjectAscent = 12

var tomlNameRe = regexp.MustCompile(`^\s*name\s*=\s*["']([^"']+)["']`)

// DetectProject resolves a human-readable project name for the directory
// a mutation happened in. It walks upward looking for a manifest
// (package.json, Cargo.toml, go.mod, pyproject.toml); failing that it
// uses the repository root's directory name, then the directory itself.
func DetectProject(dir string) string {
	if dir == "" {
		return ""
	}

	dir = filepath.Clean(dir)
	gitRoot := ""

	current := dir
	for i := 0; i < maxProjectAscent; i++ {
		if name := manifestName(current); name != "" {
			return name
		}
		if gitRoot == "" {
			if info, err := os.Stat(filepath.Join(current, ".git")); err == nil && info.IsDir() {
				gitRoot = current
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if gitRoot != "" {
		return filepath.Base(gitRoot)
	}
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// manifestName extracts the project name from the first recognized
// manifest in dir. Unreadable or malformed manifests are skipped.
func manifestName(dir string) string {
	if name := npmName(filepath.Join(dir, "package.json")); name != "" {
		return name
	}
	if name := tomlSectionName(filepath.Join(dir, "Cargo.toml"), "[package]"); name != "" {
		return name
	}
	if name := gomodName(filepath.Join(dir, "go.mod")); name != "" {
		return name
	}
	if name := tomlSectionName(filepath.Join(dir, "pyproject.toml"), "[project]"); name != "" {
		return name
	}
	return ""
}

func npmName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var m struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	return m.Name
}

func gomodName(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		module := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), "\"`")
		if module == "" {
			return ""
		}
		name := filepath.Base(module)
		if name == "." || name == ".." {
			return ""
		}
		return name
	}
	return ""
}

// tomlSectionName scans a TOML file for name = "..." inside the given
// section.
func tomlSectionName(path, section string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	inSection := false
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inSection = trimmed == section
			continue
		}
		if inSection {
			if m := tomlNameRe.FindStringSubmatch(line); len(m) == 2 && m[1] != "" {
				return m[1]
			}
		}
	}
	return ""
}

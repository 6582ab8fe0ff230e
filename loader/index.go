package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/buger/jsonparser"
)

// indexEntry is one resource inside a package, as recorded by the
// package's .index.json or recovered by probing the file.
type indexEntry struct {
	Filename     string `json:"filename"`
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	URL          string `json:"url"`
	Version      string `json:"version"`
	Kind         string `json:"kind"`
	Type         string `json:"type"`
}

// packageIndex is the .index.json wire format.
type packageIndex struct {
	IndexVersion int          `json:"index-version"`
	Files        []indexEntry `json:"files"`
}

// readIndex loads a package's resource index. It prefers the package's
// own .index.json; without one, every *.json file is probed for its
// identity fields.
func readIndex(contentDir string) ([]indexEntry, error) {
	indexPath := filepath.Join(contentDir, ".index.json")
	if data, err := os.ReadFile(indexPath); err == nil {
		var idx packageIndex
		if err := json.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("parse %s: %w", indexPath, err)
		}
		return idx.Files, nil
	}

	return probeDirectory(contentDir)
}

// probeDirectory builds an index by reading the identity fields of every
// JSON file in the directory. jsonparser extracts the handful of fields
// without decoding whole resources, which matters for core packages with
// thousands of files.
func probeDirectory(contentDir string) ([]indexEntry, error) {
	dirEntries, err := os.ReadDir(contentDir)
	if err != nil {
		return nil, fmt.Errorf("read package directory: %w", err)
	}

	var entries []indexEntry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == "package.json" || name == ".index.json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(contentDir, name))
		if err != nil {
			continue
		}
		entry, ok := probeResource(data)
		if !ok {
			continue
		}
		entry.Filename = name
		entries = append(entries, entry)
	}
	return entries, nil
}

// probeResource extracts the identity fields of a resource.
func probeResource(data []byte) (indexEntry, bool) {
	resourceType, err := jsonparser.GetString(data, "resourceType")
	if err != nil || resourceType == "" {
		return indexEntry{}, false
	}

	entry := indexEntry{ResourceType: resourceType}
	entry.ID, _ = jsonparser.GetString(data, "id")
	entry.URL, _ = jsonparser.GetString(data, "url")
	entry.Version, _ = jsonparser.GetString(data, "version")
	entry.Kind, _ = jsonparser.GetString(data, "kind")
	entry.Type, _ = jsonparser.GetString(data, "type")
	return entry, true
}

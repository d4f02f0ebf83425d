// Package roster loads enrolled-identity files for the CLI path. A roster
// file is YAML or JSON and lists identities with their reference embeddings.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/snaptick/facematch/internal/facematch"
)

// File is the on-disk roster format.
type File struct {
	Identities []Identity `json:"identities" yaml:"identities"`
}

// Identity mirrors facematch.Identity with file-friendly tags.
type Identity struct {
	Key        string      `json:"rollNumber" yaml:"rollNumber"`
	Name       string      `json:"name" yaml:"name"`
	References [][]float32 `json:"descriptors" yaml:"descriptors"`
}

// Load reads a roster file and converts it to engine identities. Entries
// whose keys differ only in casing, diacritics or separators are merged into
// one identity; the first-seen spelling is kept, so results echo the key the
// caller enrolled with.
func Load(path string) ([]facematch.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read roster file: %w", err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("could not parse roster JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("could not parse roster YAML: %w", err)
		}
	}

	identities, err := Convert(file)
	if err != nil {
		return nil, err
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("roster file %q contains no identities", path)
	}
	return identities, nil
}

// Convert turns a roster file into engine identities. Keys are normalized
// only to detect colliding entries; the identity keeps the caller's original
// spelling because downstream consumers join results back by that key.
func Convert(file File) ([]facematch.Identity, error) {
	index := make(map[string]int)
	identities := make([]facematch.Identity, 0, len(file.Identities))

	for _, entry := range file.Identities {
		norm := facematch.NormalizeIdentityKey(entry.Key)
		if norm == "" {
			return nil, fmt.Errorf("roster entry %q has an empty identity key", entry.Name)
		}

		refs := make([]facematch.Embedding, 0, len(entry.References))
		for _, ref := range entry.References {
			refs = append(refs, facematch.Embedding(ref))
		}

		if i, ok := index[norm]; ok {
			identities[i].References = append(identities[i].References, refs...)
			if identities[i].Name == "" {
				identities[i].Name = entry.Name
			}
			continue
		}

		index[norm] = len(identities)
		identities = append(identities, facematch.Identity{
			Key:        entry.Key,
			Name:       entry.Name,
			References: refs,
		})
	}

	return identities, nil
}

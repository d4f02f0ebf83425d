package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write test file: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "roster.yaml", `
identities:
  - rollNumber: "Roll-21"
    name: "Jiří Novák"
    descriptors:
      - [1, 0, 0]
      - [0, 1, 0]
  - rollNumber: "roll-7"
    name: "Ada"
    descriptors:
      - [0, 0, 1]
`)

	identities, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(identities) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(identities))
	}
	if identities[0].Key != "Roll-21" {
		t.Errorf("enrolled key must survive verbatim, got %q", identities[0].Key)
	}
	if identities[0].Name != "Jiří Novák" {
		t.Errorf("name must survive untouched, got %q", identities[0].Name)
	}
	if len(identities[0].References) != 2 {
		t.Errorf("expected 2 references, got %d", len(identities[0].References))
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "roster.json", `{
		"identities": [
			{"rollNumber": "7", "name": "Ada", "descriptors": [[0.5, 0.5]]}
		]
	}`)

	identities, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(identities) != 1 {
		t.Fatalf("expected 1 identity, got %d", len(identities))
	}
	if got := identities[0].References[0][1]; got != 0.5 {
		t.Errorf("expected reference value 0.5, got %v", got)
	}
}

func TestLoadMergesDuplicateKeys(t *testing.T) {
	path := writeFile(t, "roster.yaml", `
identities:
  - rollNumber: "Roll-21"
    descriptors:
      - [1, 0]
  - rollNumber: "roll 21"
    name: "Late Name"
    descriptors:
      - [0, 1]
`)

	identities, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(identities) != 1 {
		t.Fatalf("expected merged identity, got %d", len(identities))
	}
	if len(identities[0].References) != 2 {
		t.Errorf("expected 2 merged references, got %d", len(identities[0].References))
	}
	if identities[0].Name != "Late Name" {
		t.Errorf("merge must fill missing name, got %q", identities[0].Name)
	}
	if identities[0].Key != "Roll-21" {
		t.Errorf("merge must keep the first-seen spelling, got %q", identities[0].Key)
	}
}

func TestLoadEmptyRoster(t *testing.T) {
	path := writeFile(t, "roster.yaml", "identities: []\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty roster")
	}
}

func TestLoadEmptyKey(t *testing.T) {
	path := writeFile(t, "roster.yaml", `
identities:
  - rollNumber: "  "
    name: "Nobody"
    descriptors: [[1]]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty identity key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Entry: {
	name:     string & =~"^[a-z]+$"
	version?: string
}

#Listing: {
	output:  string | *"build/mods"
	entries: [...#Entry]
	strict?: bool
}
`

type (
	testEntry struct {
		Name    string `json:"name"`
		Version string `json:"version,omitempty"`
	}

	testListing struct {
		Output  string      `json:"output"`
		Entries []testEntry `json:"entries"`
		Strict  bool        `json:"strict,omitempty"`
	}
)

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document with defaults", func(t *testing.T) {
		t.Parallel()

		data := []byte(`entries: [{name: "core", version: "1.2.0"}, {name: "tools"}]`)
		result, err := ParseAndDecode[testListing]([]byte(testSchema), data, "#Listing")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Output != "build/mods" {
			t.Errorf("expected default output, got %q", result.Value.Output)
		}
		if len(result.Value.Entries) != 2 || result.Value.Entries[1].Version != "" {
			t.Errorf("unexpected entries: %+v", result.Value.Entries)
		}
		if !result.Unified.Exists() {
			t.Error("unified value should exist")
		}
	})

	t.Run("schema violation reports field path", func(t *testing.T) {
		t.Parallel()

		data := []byte(`entries: [{name: "Core"}]`)
		_, err := ParseAndDecode[testListing]([]byte(testSchema), data, "#Listing", WithFilename("mods.cue"))
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "mods.cue") || !strings.Contains(err.Error(), "entries[0].name") {
			t.Errorf("error should carry file and path, got: %v", err)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		t.Parallel()

		data := []byte(`entries: [], colour: "blue"`)
		if _, err := ParseAndDecode[testListing]([]byte(testSchema), data, "#Listing"); err == nil {
			t.Fatal("expected closed-definition error")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		data := []byte(`entries: [`)
		_, err := ParseAndDecode[testListing]([]byte(testSchema), data, "#Listing", WithFilename("broken.cue"))
		if err == nil || !strings.Contains(err.Error(), "broken.cue") {
			t.Fatalf("expected syntax error naming the file, got: %v", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		data := []byte(`entries: []`)
		if _, err := ParseAndDecode[testListing]([]byte(testSchema), data, "#Listing", WithMaxFileSize(4)); err == nil {
			t.Fatal("expected size error")
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testListing]([]byte(testSchema), []byte(`entries: []`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Fatalf("expected missing definition error, got: %v", err)
		}
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	in := testListing{
		Output:  "out",
		Entries: []testEntry{{Name: "core", Version: "1.0.0"}, {Name: "tools"}},
	}

	first, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("Encode is not deterministic:\n%s\n---\n%s", first, second)
	}
	if strings.HasPrefix(strings.TrimSpace(string(first)), "{") {
		t.Errorf("expected top-level declarations, got:\n%s", first)
	}

	result, err := ParseAndDecode[testListing]([]byte(testSchema), first, "#Listing")
	if err != nil {
		t.Fatalf("encoded output does not parse: %v\n%s", err, first)
	}
	if result.Value.Output != "out" || len(result.Value.Entries) != 2 || result.Value.Entries[0].Version != "1.0.0" {
		t.Errorf("round trip mismatch: %+v", result.Value)
	}
}

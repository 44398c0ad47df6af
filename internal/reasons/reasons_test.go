package reasons

import "testing"

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := Default()

	if len(catalog.Reasons()) == 0 {
		t.Fatal("default catalog is empty")
	}
	if !catalog.Valid("Other") {
		t.Error("default catalog is missing Other")
	}
	if !catalog.RequiresNote("Other") {
		t.Error("Other should require a note")
	}
	if catalog.RequiresNote("ordered_by_mistake") {
		t.Error("ordered_by_mistake should not require a note")
	}
	if catalog.Valid("made_up_reason") {
		t.Error("unknown code reported as valid")
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty catalog", content: "reasons: []"},
		{name: "missing code", content: "reasons:\n  - label: No code"},
		{name: "missing label", content: "reasons:\n  - code: no_label"},
		{name: "duplicate code", content: "reasons:\n  - code: dup\n    label: One\n  - code: dup\n    label: Two"},
		{name: "not yaml", content: "{reasons"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.content)); err == nil {
				t.Fatal("Parse() = nil error, want failure")
			}
		})
	}
}

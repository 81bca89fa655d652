package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "simple", input: "My Status Page", expected: "my-status-page"},
		{name: "punctuation", input: "Acme, Inc. (Production)", expected: "acme-inc-production"},
		{name: "already slug", input: "acme-prod", expected: "acme-prod"},
		{name: "only symbols", input: "!!!", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, err := Slugify(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.input, slug)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error for %q, got %v", tt.input, err)
			}

			if slug != tt.expected {
				t.Fatalf("Expected %q, got %q", tt.expected, slug)
			}

			if err := ValidateSlug(slug); err != nil {
				t.Fatalf("Expected derived slug %q to validate, got %v", slug, err)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"status", "my-page", "page-42"}

	for _, slug := range valid {
		if err := ValidateSlug(slug); err != nil {
			t.Errorf("Expected %q to be valid, got %v", slug, err)
		}
	}

	invalid := []string{"", "My-Page", "page_42", "-page", "page-", "a b"}

	for _, slug := range invalid {
		if err := ValidateSlug(slug); err == nil {
			t.Errorf("Expected %q to be invalid", slug)
		}
	}
}

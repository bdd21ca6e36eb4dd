package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2025-06-02", "2024-02-29"}
	invalid := []string{"2025-13-02", "2025/06/02", "yesterday", ""}
	for _, date := range valid {
		if _, ok := IsValidDate(date); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", date)
		}
	}
	for _, date := range invalid {
		if _, ok := IsValidDate(date); ok {
			t.Errorf("IsValidDate(%q) = true, want false", date)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	valid := []string{
		"https://example.com/app",
		"http://localhost:3000/",
	}
	invalid := []string{
		"example.com/app", // no scheme
		"ftp://example.com",
		"https://",
		"",
	}
	for _, u := range valid {
		if !IsValidURL(u) {
			t.Errorf("IsValidURL(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if IsValidURL(u) {
			t.Errorf("IsValidURL(%q) = true, want false", u)
		}
	}
}

func TestValidationErrorsToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "app_url", Message: "app_url is required"},
	}
	m := errs.ToMap()
	if m["app_url"] != "app_url is required" {
		t.Errorf("ToMap() = %v, want app_url entry", m)
	}
	if errs.Error() != "app_url: app_url is required" {
		t.Errorf("Error() = %q", errs.Error())
	}
}

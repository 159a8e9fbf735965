package i18n

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestDefault_LocalesAndParity(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if got := cat.Locales(); !reflect.DeepEqual(got, []string{"ar", "en"}) {
		t.Errorf("Locales() = %v; want [ar en]", got)
	}

	ar, en := cat.Dictionary("ar").Keys(), cat.Dictionary("en").Keys()
	if !reflect.DeepEqual(ar, en) {
		t.Errorf("ar and en define different keys:\nar=%v\nen=%v", ar, en)
	}
	if len(ar) == 0 {
		t.Error("no keys loaded")
	}
}

func TestDictionary_T(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	en := cat.Dictionary("en")
	if got := en.T("nav.home"); got != "Home" {
		t.Errorf(`T("nav.home") = %q; want "Home"`, got)
	}
	if got := en.T("nav.missing"); got != "nav.missing" {
		t.Errorf("missing key = %q; want the key itself", got)
	}
	if en.Dir() != "ltr" || cat.Dictionary("ar").Dir() != "rtl" {
		t.Error("Dir() should be ltr for en and rtl for ar")
	}
	if got := cat.Dictionary("fr").Locale(); got != "ar" {
		t.Errorf("unknown locale dictionary = %q; want fallback ar", got)
	}
}

func TestCatalog_Negotiate(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	tests := []struct {
		header string
		want   string
	}{
		{"ar", "ar"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR", "ar"},
		{"", "ar"},
		{"en;q=0.8,ar;q=0.9", "ar"},
		{"de;q=0.9,en;q=0.5", "en"},
		{"not a header;;;", "ar"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := cat.Negotiate(tt.header); got != tt.want {
				t.Errorf("Negotiate(%q) = %q; want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"messages/en.json": {Data: []byte(`{"a":{"b":"x","n":3}}`)},
	}

	cat, err := Load(fsys, "en")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	d := cat.Dictionary("en")
	if d.T("a.b") != "x" || d.T("a.n") != "3" {
		t.Errorf("flattened keys = %v", d.Keys())
	}
	if !cat.Supported("en") || cat.Supported("ar") {
		t.Error("Supported() mismatch")
	}

	if _, err := Load(fsys, "ar"); err == nil {
		t.Error("Load() with a missing fallback should fail")
	}
	bad := fstest.MapFS{"messages/en.json": {Data: []byte(`{`)}}
	if _, err := Load(bad, "en"); err == nil {
		t.Error("Load() with invalid JSON should fail")
	}
}

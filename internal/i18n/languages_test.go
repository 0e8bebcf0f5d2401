//go:build unit

package i18n

import (
	"reflect"
	"testing"
)

func TestValid(t *testing.T) {
	langs := []string{"en", "de"}
	if !Valid(langs, "en") || !Valid(langs, "DE ") {
		t.Error("configured languages must validate, case- and space-insensitively")
	}
	if Valid(langs, "fr") || Valid(langs, "") {
		t.Error("unknown or empty codes must not validate")
	}
}

func TestValidLanguages(t *testing.T) {
	configured := []string{"en", "de", "fr"}

	if got := ValidLanguages(configured, nil); !reflect.DeepEqual(got, configured) {
		t.Errorf("empty request means all configured, got %v", got)
	}
	if got := ValidLanguages(configured, []string{"fr", "de", "es"}); !reflect.DeepEqual(got, []string{"de", "fr"}) {
		t.Errorf("intersection must keep configured order and drop unknowns, got %v", got)
	}
	if got := ValidLanguages(configured, []string{"es"}); len(got) != 0 {
		t.Errorf("a request for only unknown languages yields nothing, got %v", got)
	}
}

package rename_test

import (
	"testing"

	"github.com/tsnjs/tsnjs/internal/rename"
)

func TestValidateIdentifier(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"alphaRenamed", true},
		{"_private", true},
		{"$jq", true},
		{"", false},
		{"123abc", false},
		{"has-dash", false},
		{"has space", false},
	}
	for _, c := range cases {
		err := rename.ValidateIdentifier(c.in)
		if (err == nil) != c.valid {
			t.Errorf("ValidateIdentifier(%q): got valid=%v, want %v", c.in, err == nil, c.valid)
		}
	}
}

func TestCaseHelpers(t *testing.T) {
	if got := rename.ToCamel("hello_world"); got != "helloWorld" {
		t.Errorf("ToCamel = %q", got)
	}
	if got := rename.ToPascal("hello_world"); got != "HelloWorld" {
		t.Errorf("ToPascal = %q", got)
	}
	if got := rename.ToSnake("HelloWorld"); got != "hello_world" {
		t.Errorf("ToSnake = %q", got)
	}
}

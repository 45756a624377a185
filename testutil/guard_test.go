package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"haccpcore/internal/core", true},
		{"haccpcore/internal", true},
		{"haccpcore/pkg/domain", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestThirdPartyImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"github.com/gin-gonic/gin", true},
		{"go.mongodb.org/mongo-driver/mongo", true},
		{"encoding/json", false},
		{"haccpcore/pkg/domain", false},
	}
	for _, c := range cases {
		if got := ThirdPartyImportForbidden(c.in); got != c.want {
			t.Fatalf("ThirdPartyImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
	if !Any(InternalImportForbidden, ThirdPartyImportForbidden)("haccpcore/internal/core") {
		t.Fatalf("Any should match when one predicate does")
	}
}

func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package tmp\nimport _ \"github.com/stretchr/testify/assert\""), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	AssertNoDirectImports(t, dir, ThirdPartyImportForbidden, "test files are skipped")

	viols, err := directImportViolations(dir, func(p string) bool { return p == "fmt" })
	if err != nil || len(viols) != 1 {
		t.Fatalf("expected one violation, got %v (%v)", viols, err)
	}
}

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, _ ...any) { r.msg = format }

func TestFailIfDirectViolations(t *testing.T) {
	var r recordingFatal
	failIfDirectViolations(&r, "reason", nil)
	if r.msg != "" {
		t.Fatalf("no violations must not fail")
	}
	failIfDirectViolations(&r, "reason", []string{"x"})
	if r.msg == "" {
		t.Fatalf("violations must fail")
	}
}

func TestDeclarationDocs(t *testing.T) {
	dir := t.TempDir()
	src := []byte(`package tmp

// Documented is described.
type Documented struct{}

type Bare struct{}

const (
	// Named is described.
	Named = 1
	Unnamed = 2
)
`)
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	docs, err := declarationDocs(dir)
	if err != nil {
		t.Fatalf("declaration docs: %v", err)
	}
	want := map[string]bool{"Documented": true, "Bare": false, "Named": true, "Unnamed": false}
	for name, documented := range want {
		if got, ok := docs[name]; !ok || got != documented {
			t.Fatalf("%s: documented=%v (declared %v), want %v", name, got, ok, documented)
		}
	}
	AssertDocumented(t, dir, "Documented", "Named")
}

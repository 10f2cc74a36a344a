package migrate

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrations_EmbeddedOrder(t *testing.T) {
	t.Parallel()

	ms, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	want := []string{"users", "sessions", "remember_tokens", "remember_tokens_lookup"}
	if len(ms) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(ms), len(want))
	}
	for i, m := range ms {
		if m.Version != i+1 || m.Name != want[i] {
			t.Fatalf("migration[%d]=%04d_%s want %04d_%s", i, m.Version, m.Name, i+1, want[i])
		}
		if !strings.Contains(m.SQL, schemaPlaceholder) {
			t.Fatalf("migration %s does not reference the schema placeholder", m.Name)
		}
	}
}

func TestLoad_RejectsGapsDuplicatesAndStrayFiles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fs   fstest.MapFS
	}{
		{name: "gap", fs: fstest.MapFS{
			"m/0001_a.sql": {Data: []byte("SELECT 1")},
			"m/0003_c.sql": {Data: []byte("SELECT 1")},
		}},
		{name: "duplicate", fs: fstest.MapFS{
			"m/0001_a.sql": {Data: []byte("SELECT 1")},
			"m/0001_b.sql": {Data: []byte("SELECT 1")},
		}},
		{name: "stray", fs: fstest.MapFS{
			"m/0001_a.sql": {Data: []byte("SELECT 1")},
			"m/README.md":  {Data: []byte("notes")},
		}},
	}
	for _, tc := range cases {
		if _, err := load(tc.fs, "m"); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got, err := Render("CREATE TABLE {{schema}}.t (id INT)", "station")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != `CREATE TABLE "station".t (id INT)` {
		t.Fatalf("Render=%q", got)
	}

	for _, bad := range []string{"", "a-b", `x"; DROP TABLE users; --`, "1abc"} {
		if _, err := Render("{{schema}}", bad); err != ErrInvalidSchema {
			t.Fatalf("Render(%q): expected ErrInvalidSchema, got %v", bad, err)
		}
	}
}

func TestAdvisoryKey_StablePerSchema(t *testing.T) {
	t.Parallel()

	if advisoryKey("station") != advisoryKey("station") {
		t.Fatalf("advisory key not stable")
	}
	if advisoryKey("station") == advisoryKey("other") {
		t.Fatalf("advisory keys collide for different schemas")
	}
}

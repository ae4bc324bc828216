package database

import (
	"strings"
	"testing"
)

func TestOptions_DSN(t *testing.T) {
	explicit := Options{DSN: "postgres://u:p@db:5432/reelmate", Host: "ignored"}
	if got := explicit.dsn(); got != explicit.DSN {
		t.Errorf("dsn() = %q, want explicit DSN", got)
	}

	defaults := Options{Password: "secret"}
	got := defaults.dsn()
	for _, part := range []string{"host=localhost", "user=postgres", "password=secret", "dbname=reelmate", "port=5432"} {
		if !strings.Contains(got, part) {
			t.Errorf("dsn() = %q, missing %q", got, part)
		}
	}
}

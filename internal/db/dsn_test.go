package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"postgres://u:p@h:5432/db?sslmode=disable", "postgres://u:p@h:5432/db?sslmode=disable"},
		{" \"postgres://u@h/db\" ", "postgres://u@h/db"},
		{"host=localhost user=billing dbname=billing", "host=localhost user=billing dbname=billing sslmode=disable"},
		{"host=localhost   user=billing  dbname=billing sslmode=require", "host=localhost user=billing dbname=billing sslmode=require"},
		{"not a dsn at all", "not a dsn at all"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Fatalf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

package model

import "testing"

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seconds int
		want    string
	}{
		{9000, "2h 30m"},
		{7200, "2h"},
		{2700, "45m"},
		{0, "0m"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.seconds); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestProblemSource(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want Platform
	}{
		{"https://open.kattis.com/problems/hello", PlatformKattis},
		{"https://codeforces.com/contest/1/problem/A", PlatformCodeforces},
		{"https://codeforces.com/gym/100000/problem/A", PlatformCodeforces},
	}
	for _, c := range cases {
		if got := ProblemSource(c.url); got != c.want {
			t.Errorf("ProblemSource(%s) = %s, want %s", c.url, got, c.want)
		}
	}
}

func TestPlatformValid(t *testing.T) {
	t.Parallel()

	if !PlatformCodeforces.Valid() || !PlatformKattis.Valid() {
		t.Error("known platforms must be valid")
	}
	if Platform("topcoder").Valid() {
		t.Error("unknown platform must not be valid")
	}
}

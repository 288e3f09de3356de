package app

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Париж", "париж"},
		{"  Париж  ", "париж"},
		{"ПАРИЖ.", "париж"},
		{"Париж. Столица Франции.", "париж"},
		{"Париж [столица Франции]", "париж"},
		{"Париж [столица Франции].", "париж"},
		{"Да, это так!", "да это так"},
		{`"Война и мир"`, "война и мир"},
		{"Кто? Что?", "кто что"},
		{"скобки (не) мешают", "скобки не мешают"},
		{"", ""},
		{"[всё в скобках]", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Париж [столица].",
		"Да, это так!",
		"  A gap [x] B.  tail",
		"один. два. три",
		"нет скобки [тут",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestNormalizeMatchesEquivalentAnswers(t *testing.T) {
	pairs := [][2]string{
		{"Пушкин [Александр Сергеевич].", "пушкин"},
		{"Сорок два!", "сорок два"},
		{"да.", "Да"},
	}
	for _, p := range pairs {
		if Normalize(p[0]) != Normalize(p[1]) {
			t.Fatalf("expected %q and %q to match, keys %q vs %q", p[0], p[1], Normalize(p[0]), Normalize(p[1]))
		}
	}
}

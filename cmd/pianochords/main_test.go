package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("PIANO_LOG_LEVEL", "error")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestShowCommand(t *testing.T) {
	out := run(t, "show", "--chord", "Cm7", "--root", "Sib")
	for _, want := range []string{"Bbm7", "Sib minore settima", "La# - Do# - Fa - Sol#"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestChordsCommand(t *testing.T) {
	out := run(t, "chords", "--root", "Re")
	for _, want := range []string{"Triadi", "Quadriadi", "Accordi Estesi", "Dmaj7", "D13sus4"} {
		if !strings.Contains(out, want) {
			t.Errorf("chords output missing %q", want)
		}
	}
}

package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"error", Error, false},
		{"INFO", Info, false},
		{"", Info, false},
		{" debug ", Debug, false},
		{"3", Trace, false},
		{"chatty", Info, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVerbosityFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbosity(int(Info))

	SetVerbosity(int(Info))
	Infof("visible %d", 1)
	Debugf("hidden %d", 2)

	out := buf.String()
	if !strings.Contains(out, "[INFO]  visible 1") {
		t.Fatalf("expected info line, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info verbosity: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Fatalf("expected caller file in output, got %q", out)
	}

	buf.Reset()
	SetVerbosity(int(Trace))
	Tracef("deep")
	if !strings.Contains(buf.String(), "[TRACE] deep") {
		t.Fatalf("expected trace line, got %q", buf.String())
	}
}

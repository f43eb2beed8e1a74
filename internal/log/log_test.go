package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentExpense, Output: &buf})

	l.Info("expense added", FieldExpenseID, "e1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentExpense {
		t.Fatalf("component = %v, want %s", rec[FieldComponent], ComponentExpense)
	}
	if rec[FieldExpenseID] != "e1" {
		t.Fatalf("expense_id = %v", rec[FieldExpenseID])
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "text", Component: ComponentApp, Output: &buf}).WithComponent(ComponentChat)

	l.Warn("slow reply")

	if !strings.Contains(buf.String(), "component=chat") {
		t.Fatalf("expected chat component, got %q", buf.String())
	}
	if l.Component() != ComponentChat {
		t.Fatalf("Component() = %q", l.Component())
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "text", Component: ComponentHTTP, Output: &buf})
	ctx := NewContext(context.Background(), l)

	if FromContext(ctx) != l {
		t.Fatal("FromContext did not return stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext should fall back to the default logger")
	}

	LogError(ctx, "boom", errors.New("disk full"), ComponentStorage, OpAppend, nil)
	out := buf.String()
	if !strings.Contains(out, "disk full") || !strings.Contains(out, "operation=append") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithExpense("e1", "Food", 4500).WithError(nil).WithHTTPResponse(404, 3)
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error should not be recorded")
	}
	if f[FieldSuccess] != false {
		t.Fatalf("success = %v, want false", f[FieldSuccess])
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatal("ToSlice length mismatch")
	}
}

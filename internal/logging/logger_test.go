package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lumi/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		install(zap.NewNop(), config.LoggingConfig{})
	})
}

// TestInitialize_DebugModeWritesFile tests that enabled categories reach the log file.
func TestInitialize_DebugModeWritesFile(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	err := Initialize(config.LoggingConfig{
		DebugMode: true,
		Level:     "debug",
		Format:    "json",
		File:      filepath.Join("logs", "lumi.log"),
	}, ws)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Session("session %s started", "abc")
	API("calling %s", "gemini-2.5-flash")
	CloseAll()

	data, err := os.ReadFile(filepath.Join(ws, "logs", "lumi.log"))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	content := string(data)
	for _, want := range []string{"Lumi logging initialized", "session abc started", "calling gemini-2.5-flash", `"logger":"api"`} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q\n%s", want, content)
		}
	}
}

// TestInitialize_ProductionModeIsSilent tests that nothing is created without debug_mode.
func TestInitialize_ProductionModeIsSilent(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	if err := Initialize(config.LoggingConfig{File: "lumi.log"}, ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	Boot("should not be written")
	CloseAll()

	if _, err := os.Stat(filepath.Join(ws, "lumi.log")); !os.IsNotExist(err) {
		t.Errorf("expected no log file in production mode, stat err = %v", err)
	}
	if IsDebugMode() {
		t.Error("IsDebugMode should be false")
	}
}

func TestInitialize_InvalidLevel(t *testing.T) {
	resetLogging(t)

	err := Initialize(config.LoggingConfig{DebugMode: true, Level: "loud"}, t.TempDir())
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestCategoryToggle(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zap.DebugLevel)
	install(zap.New(core), config.LoggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"api": false},
	})

	API("hidden")
	Session("visible")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.LoggerName != "session" || entry.Message != "visible" {
		t.Errorf("unexpected entry: %s %q", entry.LoggerName, entry.Message)
	}
}

func TestLoggerWithFields(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zap.DebugLevel)
	Use(zap.New(core))

	Get(CategoryTranscript).With(zap.Int("turn", 3)).Info("turn %s", "done")

	entries := logs.FilterField(zap.Int("turn", 3)).All()
	if len(entries) != 1 || entries[0].Message != "turn done" {
		t.Fatalf("expected structured entry, got %+v", logs.All())
	}
}

func TestAuditEvents(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zap.DebugLevel)
	Use(zap.New(core))

	audit := AuditWithSession("sess-1")
	audit.TurnStart(1, 4)
	audit.LLMCall("gemini-2.5-flash", 120*time.Millisecond, errors.New("timeout"))
	audit.TurnEnd(1, 150*time.Millisecond, false)

	if logs.Len() != 3 {
		t.Fatalf("expected 3 audit entries, got %d", logs.Len())
	}
	if n := logs.FilterField(zap.String("session", "sess-1")).Len(); n != 3 {
		t.Errorf("expected all entries correlated to session, got %d", n)
	}
	failed := logs.FilterField(zap.Bool("success", false)).All()
	if len(failed) != 2 {
		t.Errorf("expected 2 failed entries, got %d", len(failed))
	}
}

// TestConcurrentGet tests that Get is safe under concurrent use.
func TestConcurrentGet(t *testing.T) {
	resetLogging(t)
	core, _ := observer.New(zap.DebugLevel)
	Use(zap.New(core))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Get(CategoryUI).Debug("tick %d", j)
			}
		}()
	}
	wg.Wait()

	if Get(CategoryUI) != Get(CategoryUI) {
		t.Error("expected cached logger per category")
	}
}

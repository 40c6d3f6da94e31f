package common

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelTrace, "TRACE"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer, level LogLevel) *AppLogger {
	return &AppLogger{
		level:       level,
		output:      buf,
		logger:      log.New(buf, "", 0),
		subscribers: make(map[SubscriptionHandle]func(string)),
	}
}

func TestAppLogger_LogFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelWarn)

	// Trace and Info should be filtered
	logger.Trace("trace message")
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("Trace/Info messages should be filtered when level is Warn")
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "WARN") {
		t.Error("Warn message should be logged")
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Error("Error message should be logged")
	}
}

func TestAppLogger_LogFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelTrace)

	logger.Info("Test message with %s", "formatting")

	output := buf.String()

	if !strings.Contains(output, time.Now().Format("2006/01/02")) {
		t.Error("Log should contain date in YYYY/MM/DD format")
	}

	if !strings.Contains(output, "[INFO]") {
		t.Error("Log should contain level indicator")
	}

	if !strings.Contains(output, "Test message with formatting") {
		t.Error("Log should contain formatted message")
	}
}

func TestAppLogger_Subscribe(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelTrace)

	var entries []string
	handle := logger.Subscribe(func(entry string) {
		entries = append(entries, entry)
	})

	logger.Info("first entry")
	logger.Error("second entry")

	if len(entries) != 2 {
		t.Fatalf("subscriber received %d entries, want 2", len(entries))
	}
	if !strings.Contains(entries[0], "first entry") {
		t.Errorf("entries[0] = %q, should contain %q", entries[0], "first entry")
	}

	logger.Unsubscribe(handle)
	logger.Info("after unsubscribe")

	if len(entries) != 2 {
		t.Errorf("subscriber received %d entries after unsubscribe, want 2", len(entries))
	}
}

func TestAppLogger_SubscriberHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelError)

	var entries []string
	logger.Subscribe(func(entry string) {
		entries = append(entries, entry)
	})

	logger.Trace("filtered out")
	logger.Info("also filtered")

	if len(entries) != 0 {
		t.Errorf("subscriber received %d filtered entries, want 0", len(entries))
	}
}

func TestDefaultLogConfig(t *testing.T) {
	if defaultMaxFileSize != 5*1024*1024 {
		t.Errorf("defaultMaxFileSize = %v, want 5MB", defaultMaxFileSize)
	}

	if defaultMaxBackups != 5 {
		t.Errorf("defaultMaxBackups = %v, want 5", defaultMaxBackups)
	}
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.HasSuffix(dir, ConfigDirName) {
		t.Errorf("GetConfigDir() = %v, should end with %v", dir, ConfigDirName)
	}
}

func TestGetStableID(t *testing.T) {
	first := GetStableID()
	if first == "" {
		t.Fatal("GetStableID() returned empty string")
	}

	second := GetStableID()
	if first != second {
		t.Errorf("GetStableID() not stable: %q != %q", first, second)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n        uint64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatBytes(tt.n); got != tt.expected {
				t.Errorf("FormatBytes(%d) = %v, want %v", tt.n, got, tt.expected)
			}
		})
	}
}

func TestStringInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}

	if !StringInSlice("b", slice) {
		t.Error("StringInSlice should find existing element")
	}
	if StringInSlice("z", slice) {
		t.Error("StringInSlice should not find missing element")
	}
}

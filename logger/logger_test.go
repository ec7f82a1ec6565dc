package logger

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func captureStdLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLoggerFallsBackToStdout(t *testing.T) {
	buf := captureStdLog(t)
	Init("", "StockInfoTest")
	defer Close()

	mutex.RLock()
	gce := isLoggerGCE
	mutex.RUnlock()
	if gce {
		t.Fatal("logger must not use GCE without a project")
	}

	Info("This is info")
	Warn("This is warn %s %s", "meme", "papa")
	Error("This is error %d", 3)

	out := buf.String()
	for _, want := range []string{
		"[StockInfoTest][INFO] This is info",
		"[StockInfoTest][WARN] This is warn meme papa",
		"[StockInfoTest][ERROR] This is error 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestPanicPanics(t *testing.T) {
	captureStdLog(t)
	Init("", "")
	defer func() {
		if recover() == nil {
			t.Fatal("Panic must panic")
		}
	}()
	Panic("Reboot %d", 1)
}

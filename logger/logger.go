package logger

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"

	// Imports the Stackdriver Logging client package.
	gce "cloud.google.com/go/logging"
)

var (
	mutex        sync.RWMutex
	isLoggerGCE  bool
	loggerClient *gce.Client
	loggerInfo   *log.Logger
	loggerWarn   *log.Logger
	loggerError  *log.Logger
	loggerPanic  *gce.Logger
	logName      = "StockInfo"
)

// Init connects the logger to Stackdriver.
// If projectID is empty or the OS is not Linux, only stdout is used.
func Init(projectID, name string) {
	mutex.Lock()
	defer mutex.Unlock()

	if name != "" {
		logName = name
	}
	if projectID == "" || runtime.GOOS != "linux" {
		isLoggerGCE = false
		return
	}

	client, err := gce.NewClient(context.Background(), projectID)
	if err != nil {
		isLoggerGCE = false
		log.Printf("Failed to create client: %v, using builtin logger", err)
		return
	}
	loggerClient = client

	loggerInfo = client.Logger(logName).StandardLogger(gce.Info)
	loggerWarn = client.Logger(logName).StandardLogger(gce.Warning)
	loggerError = client.Logger(logName).StandardLogger(gce.Error)
	loggerPanic = client.Logger(logName)

	isLoggerGCE = true
}

// Close closes GCE Client
func Close() {
	mutex.Lock()
	defer mutex.Unlock()

	if loggerClient != nil {
		loggerClient.Close()
		loggerClient = nil
	}
	loggerInfo, loggerWarn, loggerError, loggerPanic = nil, nil, nil, nil
	isLoggerGCE = false
}

// Info prints logs as this format: [INFO]
func Info(format string, v ...interface{}) {
	mutex.RLock()
	defer mutex.RUnlock()
	handleLog(loggerInfo, "INFO", format, v...)
}

// Warn prints logs as this format: [WARN]
func Warn(format string, v ...interface{}) {
	mutex.RLock()
	defer mutex.RUnlock()
	handleLog(loggerWarn, "WARN", format, v...)
}

// Error prints logs as this format: [ERROR]
func Error(format string, v ...interface{}) {
	mutex.RLock()
	defer mutex.RUnlock()
	handleLog(loggerError, "ERROR", format, v...)
}

// Panic prints logs as this format: [PANIC], and then panics.
func Panic(format string, v ...interface{}) {
	mutex.RLock()
	panicLogger := loggerPanic
	name := logName
	mutex.RUnlock()
	handlePanicLog(panicLogger, name, format, v...)
}

func formatMessage(severity, format string) string {
	return "[" + logName + "][" + severity + "] " + format
}

func handleLog(logHandle *log.Logger, severity, format string, v ...interface{}) {
	msgFormat := formatMessage(severity, format)

	// Log to Stdout
	if logHandle == nil {
		log.Printf(msgFormat, v...)
		return
	}
	logHandle.Printf(msgFormat, v...)
}

func handlePanicLog(panicLogger *gce.Logger, name, format string, v ...interface{}) {
	msgFormat := "[" + name + "][PANIC] " + format

	if panicLogger == nil {
		log.Panicf(msgFormat, v...)
		return
	}

	s := fmt.Sprintf(format, v...)
	panicLogger.Log(gce.Entry{
		Severity: gce.Critical,
		Payload:  s,
	})
	panicLogger.Flush()

	panic(s)
}

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// levelColors drives both the level tag and the bold category of a terminal line.
var levelColors = [...]color.Attribute{color.FgCyan, color.FgGreen, color.FgYellow, color.FgRed, color.FgRed}

func (lv LogLevel) String() string {
	if lv < DEBUG || lv > FATAL {
		return levelNames[INFO]
	}
	return levelNames[lv]
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

type Logger struct {
	mu           sync.Mutex
	out          io.Writer
	logFile      *os.File
	colorEnabled bool
}

// NewLogger writes colored lines to stdout and, when logDir is not empty, JSON lines to
// a daily web-calendar-YYYY-MM-DD.log inside logDir.
func NewLogger(logDir string, colorEnabled bool) *Logger {
	l := &Logger{out: color.Output, colorEnabled: colorEnabled}
	if logDir == "" {
		return l
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatal("Failed to create logs directory:", err)
	}
	name := filepath.Join(logDir, fmt.Sprintf("web-calendar-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("Failed to create log file:", err)
	}
	l.logFile = f

	l.Info("LOGGER", fmt.Sprintf("Log file: %s", name))
	return l
}

// SetOutput redirects terminal output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) log(level LogLevel, category, message string) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     level.String(),
		Category:  strings.ToUpper(category),
		Message:   message,
	}
	// skip log and the public level method
	if _, file, line, ok := runtime.Caller(2); ok {
		entry.File, entry.Line = filepath.Base(file), line
	}

	terminal := l.terminalLine(level, entry)
	jsonLine, _ := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, terminal)
	if l.logFile != nil {
		l.logFile.Write(append(jsonLine, '\n'))
	}
}

func (l *Logger) paint(c *color.Color, format string, args ...interface{}) string {
	if !l.colorEnabled {
		return fmt.Sprintf(format, args...)
	}
	return c.Sprintf(format, args...)
}

// terminalLine renders "15:04:05 LEVEL [CATEGORY  ] message (file:line)".
func (l *Logger) terminalLine(level LogLevel, entry LogEntry) string {
	attr := levelColors[INFO]
	if level >= DEBUG && level <= FATAL {
		attr = levelColors[level]
	}
	levelColor := color.New(attr)
	if level == FATAL {
		levelColor.Add(color.Bold)
	}

	var b strings.Builder
	b.WriteString(l.paint(color.New(color.FgBlue), "%s", entry.Timestamp[11:19]))
	b.WriteString(" ")
	b.WriteString(l.paint(levelColor, "%-5s", entry.Level))
	b.WriteString(" ")
	b.WriteString(l.paint(color.New(attr, color.Bold), "[%-10s]", entry.Category))
	b.WriteString(" ")
	b.WriteString(entry.Message)
	if entry.File != "" && entry.Line > 0 {
		b.WriteString(l.paint(color.New(color.FgMagenta), " (%s:%d)", entry.File, entry.Line))
	}
	b.WriteString("\n")
	return b.String()
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

// Fatal logs, flushes the log file and exits with status 1.
func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	l.Close()
	os.Exit(1)
}

// LogEvent records a change to a stored calendar event.
func (l *Logger) LogEvent(action string, eventID int64, message string) {
	l.Info("EVENT", fmt.Sprintf("[%s] %d - %s", action, eventID, message))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.Info("API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration))
}

func (l *Logger) LogKafka(action, topic, message string) {
	l.Info("KAFKA", fmt.Sprintf("[%s] %s - %s", action, topic, message))
}

func (l *Logger) LogDatabase(operation, table, message string) {
	l.Info("DATABASE", fmt.Sprintf("[%s] %s - %s", operation, table, message))
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
}

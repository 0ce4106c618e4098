package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Определяем уровни логирования
const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"
)

var levelRank = map[string]int{
	DEBUG: 10,
	INFO:  20,
	WARN:  30,
	ERROR: 40,
}

var Stdlog, Errlog, Debuglog *log.Logger

// Dir is where rotated log files are written. An empty Dir keeps logging on
// the console only.
var Dir = "log"

var (
	mu        sync.Mutex
	threshold = levelRank[INFO]
)

func init() {
	Stdlog = log.New(os.Stdout, "Success: ", log.Ldate|log.Ltime)
	Errlog = log.New(os.Stderr, "Error: ", log.Ldate|log.Ltime)
	Debuglog = log.New(os.Stderr, "Debug: ", log.Ldate|log.Ltime|log.Lmicroseconds)

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := SetLevel(lvl); err != nil {
			Errlog.Printf("Unrecognized LOG_LEVEL %q, keeping %s", lvl, INFO)
		}
	}
}

// SetLevel sets the minimum level LogMessage and Debugf let through.
func SetLevel(level string) error {
	rank, ok := levelRank[strings.ToUpper(level)]
	if !ok {
		return fmt.Errorf("log: unknown level %q", level)
	}
	mu.Lock()
	threshold = rank
	mu.Unlock()
	return nil
}

// Enabled reports whether messages at level are currently written.
func Enabled(level string) bool {
	mu.Lock()
	defer mu.Unlock()
	rank, ok := levelRank[level]
	return ok && rank >= threshold
}

// Debugf writes to Debuglog when DEBUG is enabled. It never touches the log
// files, so it is safe to call from the step loop.
func Debugf(format string, args ...interface{}) {
	if Enabled(DEBUG) {
		Debuglog.Printf(format, args...)
	}
}

func LogMessage(level, message string) {
	if !Enabled(level) {
		return
	}

	if level == ERROR {
		err := errors.New(message)
		PrintIfErr("", &err)
		return
	}

	logger := log.New(os.Stdout, "Success: ", log.Ldate|log.Ltime)

	// Получаем имя лог-файла и текущий суффикс.
	if logFile := openLogFile("stdlog"); logFile != nil {
		defer logFile.Close()
		logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	logger.Printf("[%s] %s\n", level, message)
}

// getLogFilePath определяет имя файла лога и возвращает суффикс для ротации.
func getLogFilePath(typeLog string, now time.Time) (string, int) {
	var suffix int
	switch day := now.Day(); {
	case day <= 9:
		suffix = 0
	case day <= 19:
		suffix = 1
	default:
		suffix = 2
	}
	return filepath.Join(Dir, fmt.Sprintf("%s-%d.log", typeLog, suffix)), suffix
}

// rotateLogs removes the file of the third of the month that comes next, so
// that at most two of the three files for typeLog are kept.
func rotateLogs(typeLog string, currentSuffix int) {
	if currentSuffix < 0 || currentSuffix > 2 {
		return
	}
	next := (currentSuffix + 1) % 3
	fileToDelete := filepath.Join(Dir, fmt.Sprintf("%s-%d.log", typeLog, next))

	if _, err := os.Stat(fileToDelete); err == nil {
		if err := os.Remove(fileToDelete); err != nil {
			log.Printf("[WARN] failed to remove %s: %v", fileToDelete, err)
		} else {
			log.Printf("[INFO] removed %s", fileToDelete)
		}
	}
}

// openLogFile returns the current rotated file for typeLog or nil when file
// logging is disabled or unavailable.
func openLogFile(typeLog string) *os.File {
	if Dir == "" {
		return nil
	}
	logPath, suffix := getLogFilePath(typeLog, time.Now())
	rotateLogs(typeLog, suffix)

	if err := os.MkdirAll(Dir, 0o755); err != nil {
		Errlog.Printf("[ERROR] cannot create %s: %v", Dir, err)
		return nil
	}
	// Открываем файл для логирования с режимами добавления, создания и записи.
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		Errlog.Printf("[ERROR] cannot open %s: %v", logPath, err)
		return nil
	}
	return logFile
}

func PrintIfErr(msg string, err *error) {
	if err == nil || *err == nil {
		return
	}

	logger := log.New(os.Stderr, "Error: ", log.Ldate|log.Ltime)
	if logFile := openLogFile("errors"); logFile != nil {
		defer logFile.Close()
		logger.SetOutput(io.MultiWriter(os.Stderr, logFile))
	}

	if msg == "" {
		logger.Printf("%v\n", *err)
		return
	}
	logger.Printf("%s: %v\n", msg, *err)
}

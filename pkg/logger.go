package pkg

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelInfo
	LogLevelDebug
)

var (
	debug_logger = log.New(io.Discard, "DEBUG: ", log.Lshortfile|log.LstdFlags)
	info_logger  = log.New(os.Stdout, "INFO: ", log.Lshortfile|log.LstdFlags)
	warn_logger  = log.New(os.Stdout, "WARN: ", log.Lshortfile|log.LstdFlags)
	error_logger = log.New(os.Stderr, "ERROR: ", log.Lshortfile|log.LstdFlags)
	fatal_logger = log.New(os.Stderr, "FATAL: ", log.Lshortfile|log.LstdFlags)
)

var log_level = LogLevelErrOnly

func SetLogLevel(level LogLevel) {
	log_level = level

	set := func(l *log.Logger, min LogLevel, w io.Writer) {
		if level >= min {
			l.SetOutput(w)
		} else {
			l.SetOutput(io.Discard)
		}
	}

	set(debug_logger, LogLevelDebug, os.Stdout)
	set(info_logger, LogLevelInfo, os.Stdout)
	set(warn_logger, LogLevelInfo, os.Stdout)
	set(error_logger, LogLevelErrOnly, os.Stderr)
	set(fatal_logger, LogLevelErrOnly, os.Stderr)
}

func GetLogLevel() LogLevel { return log_level }

var (
	DebugLog = debug_logger.Println
	InfoLog  = info_logger.Println
	WarnLog  = warn_logger.Println
	ErrorLog = error_logger.Println
	FatalLog = fatal_logger.Fatalln
)

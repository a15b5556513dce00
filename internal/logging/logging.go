package logging

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/microblog/internal/config"
)

const (
	DefaultLogFilePath = "microblog.log"
	timeFormat         = "2006-01-02 15:04:05"
)

// Apply sets the global log level and output writers (console + rotating file).
// When cfg.File is empty the log file lives next to the database.
func Apply(cfg config.LogConfig, dbPath string) {
	applyLevel(cfg.Level)
	zerolog.ErrorStackMarshaler = errorStackMarshaller
	applyOutputs(cfg, dbPath)
}

// LevelForVerbosity maps a -v count onto a level name, falling back to level.
func LevelForVerbosity(verbosity int, level string) string {
	switch {
	case verbosity == 1:
		return "debug"
	case verbosity >= 2:
		return "trace"
	}
	return level
}

func applyLevel(level string) {
	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func applyOutputs(cfg config.LogConfig, dbPath string) {
	logFilePath := cfg.File
	if logFilePath == "" {
		logFilePath = FilePathForDB(dbPath)
	}

	consoleOutput := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	}
	log.Logger = zerolog.New(consoleOutput).With().Timestamp().Logger()

	if err := ensureLogDir(logFilePath); err != nil {
		log.Error().Err(err).Str("path", logFilePath).Msg("Failed to prepare log directory; logging to console only")
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	fileConsole := zerolog.ConsoleWriter{
		Out:        fileWriter,
		TimeFormat: timeFormat,
		NoColor:    true,
	}

	multi := zerolog.MultiLevelWriter(consoleOutput, fileConsole)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
}

// FilePathForDB returns a log file path that lives alongside the database file.
func FilePathForDB(dbPath string) string {
	if dbPath == "" {
		return DefaultLogFilePath
	}
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return filepath.Join(filepath.Dir(dbPath), DefaultLogFilePath)
	}
	return filepath.Join(filepath.Dir(absDBPath), DefaultLogFilePath)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func errorStackMarshaller(err error) any {
	cs, ok := failure.CallStackOf(err)
	if !ok {
		return nil
	}
	frames := cs.Frames()
	res := make([]string, 0, len(frames))
	for _, frame := range frames {
		res = append(res, frame.Pkg()+"."+frame.Func()+":"+strconv.Itoa(frame.Line()))
	}
	return res
}

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/trapcheck/logging/colors"
	"github.com/crytic/trapcheck/logging/formatters"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the CLI starts. Each
// module/package should create its own sub-logger. This allows to create unique logging instances depending on the use
// case.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured
// with colors, and unstructured formats.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// structuredLogger describes a logger that will be used to output structured logs to any arbitrary channel.
	structuredLogger zerolog.Logger

	// structuredWriters describes the various channels that the output from the structuredLogger will go to.
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that will be used to stream un-colorized, unstructured output to any
	// arbitrary channel.
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the various channels that the output from the unstructuredLogger will go to.
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that will be used to stream colorized, unstructured output to any
	// arbitrary channel.
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the various channels that the output from the unstructuredColorLogger will go
	// to.
	unstructuredColorWriters []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. By default, a logger that is instantiated
// with this function is not usable until a log channel is added. To add or remove channels that the logger
// streams logs to, call the Logger.AddWriter and Logger.RemoveWriter functions.
func NewLogger(level zerolog.Level) *Logger {
	return &Logger{
		level:                    level,
		structuredLogger:         zerolog.New(nil).Level(zerolog.Disabled),
		structuredWriters:        make([]io.Writer, 0),
		unstructuredLogger:       zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorLogger:  zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredColorWriters: make([]io.Writer, 0),
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subStructuredLogger := l.structuredLogger.With().Str(key, value).Logger()
	subUnstructuredLogger := l.unstructuredLogger.With().Str(key, value).Logger()
	subUnstructuredColoredLogger := l.unstructuredColorLogger.With().Str(key, value).Logger()

	// Writer slices are copied so that adding a writer to the sub-logger does not affect the parent
	return &Logger{
		level:                    l.level,
		structuredLogger:         subStructuredLogger,
		structuredWriters:        append([]io.Writer(nil), l.structuredWriters...),
		unstructuredLogger:       subUnstructuredLogger,
		unstructuredWriters:      append([]io.Writer(nil), l.unstructuredWriters...),
		unstructuredColorLogger:  subUnstructuredColoredLogger,
		unstructuredColorWriters: append([]io.Writer(nil), l.unstructuredColorWriters...),
	}
}

// AddWriter will add a writer to which log output will go to. If the format is structured then the writer will
// receive structured JSON output. If the format is unstructured, then colored determines whether the unstructured
// output will be colorized. Adding a writer that was already added for the same format is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	switch format {
	case STRUCTURED:
		if containsWriter(l.structuredWriters, writer) {
			return
		}
		l.structuredWriters = append(l.structuredWriters, writer)
		l.structuredLogger = zerolog.New(syncWriters(l.structuredWriters)).Level(l.level).With().Timestamp().Logger()
	case UNSTRUCTURED:
		if colored {
			if containsWriter(l.unstructuredColorWriters, writer) {
				return
			}
			l.unstructuredColorWriters = append(l.unstructuredColorWriters, writer)
			l.unstructuredColorLogger = zerolog.New(l.consoleWriters(l.unstructuredColorWriters, true)).Level(l.level)
		} else {
			if containsWriter(l.unstructuredWriters, writer) {
				return
			}
			l.unstructuredWriters = append(l.unstructuredWriters, writer)
			l.unstructuredLogger = zerolog.New(l.consoleWriters(l.unstructuredWriters, false)).Level(l.level)
		}
	}
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. The writer will be removed
// from the list of writers of the provided format. If the writer does not exist, this function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	switch format {
	case STRUCTURED:
		l.structuredWriters = withoutWriter(l.structuredWriters, writer)
		l.structuredLogger = l.rebuild(l.structuredWriters, func(w []io.Writer) zerolog.Logger {
			return zerolog.New(syncWriters(w)).Level(l.level).With().Timestamp().Logger()
		})
	case UNSTRUCTURED:
		if colored {
			l.unstructuredColorWriters = withoutWriter(l.unstructuredColorWriters, writer)
			l.unstructuredColorLogger = l.rebuild(l.unstructuredColorWriters, func(w []io.Writer) zerolog.Logger {
				return zerolog.New(l.consoleWriters(w, true)).Level(l.level)
			})
		} else {
			l.unstructuredWriters = withoutWriter(l.unstructuredWriters, writer)
			l.unstructuredLogger = l.rebuild(l.unstructuredWriters, func(w []io.Writer) zerolog.Logger {
				return zerolog.New(l.consoleWriters(w, false)).Level(l.level)
			})
		}
	}
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.structuredLogger = l.structuredLogger.Level(level)
	l.unstructuredLogger = l.unstructuredLogger.Level(level)
	l.unstructuredColorLogger = l.unstructuredColorLogger.Level(level)
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event. A stack trace is attached to the event whenever the
// provided error carries one.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event and then panic
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages for every channel and sends them at the provided level.
func (l *Logger) log(level zerolog.Level, args ...any) {
	// Build the messages and retrieve any error or associated structured log info
	colorMsg, noColorMsg, err, info := buildMsgs(args...)

	// Apply the console formatter selected by the structured log info, if any
	if info != nil {
		if key, ok := info[FORMAT_KEY].(string); ok {
			if formatter := formatters.Lookup(key); formatter != nil {
				colorMsg = formatter(colorMsg)
			}
		}
	}

	// Instantiate log events
	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	colorLog := l.unstructuredColorLogger.WithLevel(level)

	// Chain the error. Stack traces are added at debug level or for errors and panics
	withStack := l.level <= zerolog.DebugLevel || level >= zerolog.ErrorLevel
	chainError(structuredLog, unstructuredLog, colorLog, err, withStack)

	// Chain the structured log info and messages and send off the logs
	chainStructuredLogInfoAndMsgs(structuredLog, unstructuredLog, colorLog, info, noColorMsg, colorMsg)

	if level == zerolog.PanicLevel {
		panic(noColorMsg)
	}
}

// consoleWriters wraps every writer into a zerolog.ConsoleWriter for unstructured output.
func (l *Logger) consoleWriters(writers []io.Writer, colored bool) io.Writer {
	wrapped := make([]io.Writer, len(writers))
	for i, writer := range writers {
		consoleWriter := zerolog.ConsoleWriter{Out: zerolog.SyncWriter(writer), NoColor: !colored}
		wrapped[i] = setupDefaultFormatting(consoleWriter, l.level, colored)
	}
	return zerolog.MultiLevelWriter(wrapped...)
}

// syncWriters combines writers into one, serializing writes to each of them. Test runs log from several goroutines.
func syncWriters(writers []io.Writer) io.Writer {
	synced := make([]io.Writer, len(writers))
	for i, writer := range writers {
		synced[i] = zerolog.SyncWriter(writer)
	}
	return zerolog.MultiLevelWriter(synced...)
}

// rebuild returns a disabled logger if no writers are left, otherwise the logger created by build.
func (l *Logger) rebuild(writers []io.Writer, build func([]io.Writer) zerolog.Logger) zerolog.Logger {
	if len(writers) == 0 {
		return zerolog.New(nil).Level(zerolog.Disabled)
	}
	return build(writers)
}

// containsWriter returns true if writer is already in writers.
func containsWriter(writers []io.Writer, writer io.Writer) bool {
	for _, w := range writers {
		if w == writer {
			return true
		}
	}
	return false
}

// withoutWriter returns writers with every occurrence of writer removed.
func withoutWriter(writers []io.Writer, writer io.Writer) []io.Writer {
	remaining := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != writer {
			remaining = append(remaining, w)
		}
	}
	return remaining
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a colorized-string that can be used for
// console logging while the second string will be a non-colorized one that can be used for file/structured logging.
// The error and the StructuredLogInfo can be used to add additional context to log messages
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", "", nil, nil
	}

	// Initialize the base color context, the string buffers and the structured log info object
	colorCtx := colors.Reset
	colorMsg := make([]string, 0)
	noColorMsg := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// If the argument is a color function, switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case *LogBuffer:
			// Log buffers are flattened into the current message
			bufferColorMsg, bufferNoColorMsg, _, _ := buildMsgs(t.Args()...)
			colorMsg = append(colorMsg, bufferColorMsg)
			noColorMsg = append(noColorMsg, bufferNoColorMsg)
		case error:
			// Note that only one error can be provided for each log message
			err = t
		default:
			// In the base case, append the object to the two string buffers. The colored string buffer will have the
			// current color context applied to it.
			colorMsg = append(colorMsg, colorCtx(t))
			noColorMsg = append(noColorMsg, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorMsg, ""), strings.Join(noColorMsg, ""), err, info
}

// chainError is a helper function that takes in a *zerolog.Event for each channel and chains an error to each event.
// If withStack is true, then a stack trace is added to each event as well.
func chainError(structuredLog *zerolog.Event, unstructuredLog *zerolog.Event, colorLog *zerolog.Event, err error, withStack bool) {
	// Nothing to chain
	if err == nil {
		return
	}

	if withStack {
		structuredLog.Stack()
		unstructuredLog.Stack()
		colorLog.Stack()
	}

	structuredLog.Err(err)
	unstructuredLog.Err(err)
	colorLog.Err(err)
}

// chainStructuredLogInfoAndMsgs is a helper function that takes in a *zerolog.Event for each channel, chains any
// StructuredLogInfo provided to it, adds the associated messages, and sends out the logs to their respective
// channels. The format selector is only meaningful for the console and is not emitted.
func chainStructuredLogInfoAndMsgs(structuredLog *zerolog.Event, unstructuredLog *zerolog.Event, colorLog *zerolog.Event, info StructuredLogInfo, noColorMsg string, colorMsg string) {
	// If we are provided a structured log info object, add that as a key-value pair to the structured event
	if len(info) > 0 {
		fields := make(map[string]any, len(info))
		for k, v := range info {
			if k != FORMAT_KEY {
				fields[k] = v
			}
		}
		if len(fields) > 0 {
			structuredLog.Any("info", fields)
		}
	}

	// Append the messages to each event. This will also result in the log events being sent out to their respective
	// streams. Note that we are deferring the msg to the structured logger in case we are logging a panic and want to
	// make sure that all channels receive the panic log
	defer structuredLog.Msg(noColorMsg)
	unstructuredLog.Msg(noColorMsg)
	colorLog.Msg(colorMsg)
}

// setupDefaultFormatting will update the console logger's formatting to the trapcheck standard
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level, colored bool) zerolog.ConsoleWriter {
	// Get rid of the timestamp for console output
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	// Messages are colorized by buildMsgs and the formatters, not by zerolog
	writer.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%v", i)
	}

	// We will define a custom format for each level
	writer.FormatLevel = func(i any) string {
		// Create a level object for better switch logic
		levelStr, _ := i.(string)
		parsed, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		// Plain consoles get the same glyphs without any coloring
		colorFunc := func(f colors.ColorFunc, s any) string {
			if !colored {
				return colors.Reset(s)
			}
			return f(s)
		}

		// Switch on the level and return a custom string
		switch parsed {
		case zerolog.TraceLevel:
			return colorFunc(colors.CyanBold, zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colorFunc(colors.BlueBold, zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colorFunc(colors.GreenBold, colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colorFunc(colors.YellowBold, zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colorFunc(colors.RedBold, zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colorFunc(colors.RedBold, zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colorFunc(colors.RedBold, zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	// If we are above debug level, we want to get rid of the `module` component when logging to console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}

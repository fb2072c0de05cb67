package support

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
	"github.com/opd-ai/wirekit/plugin"
	"github.com/opd-ai/wirekit/result"
)

// TypeLogger is the interface type name served by the support.logger
// factory.
const TypeLogger = "WireKit:Interface:Logger"

// VersionLogger is the logger interface version.
const VersionLogger uint32 = 1

// Level is a numeric log severity. Zero silences everything; each step up
// admits more detail.
type Level uint32

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	}
	return fmt.Sprintf("level(%d)", uint32(l))
}

// toLogrus maps a threshold Level to the logrus severity that implements
// it. LevelNone becomes PanicLevel, which the bridge never emits at, so a
// silenced logger drops every message.
func (l Level) toLogrus() logrus.Level {
	switch l {
	case LevelNone:
		return logrus.PanicLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelDebug:
		return logrus.DebugLevel
	}
	return logrus.TraceLevel
}

// LoggerMethods is the method table behind TypeLogger.
type LoggerMethods struct {
	Version  uint32
	GetLevel func(data any) uint32
	SetLevel func(data any, level uint32)
	Log      func(data any, level uint32, file []byte, line int32, msg []byte)
}

// Logger is a typed view over an object exposing TypeLogger. It holds a
// view reference on the underlying object and must be closed.
type Logger struct {
	view *plugin.View
	m    *LoggerMethods
}

// LoggerFromHandle acquires the logger interface from an instantiated object.
func LoggerFromHandle(h *plugin.Handle) (*Logger, error) {
	view, err := h.Interface(TypeLogger, VersionLogger)
	if err != nil {
		return nil, err
	}
	return &Logger{view: view, m: abi.Methods[LoggerMethods](view.Iface())}, nil
}

// Close releases the view reference.
func (l *Logger) Close() error {
	return l.view.Close()
}

// Level reports the current severity threshold.
func (l *Logger) Level() Level {
	return Level(l.m.GetLevel(l.data()))
}

// SetLevel replaces the severity threshold.
func (l *Logger) SetLevel(level Level) {
	l.m.SetLevel(l.data(), uint32(level))
}

// Logf formats one message and emits it at the given severity, attributed
// to a source location. Messages above the threshold are dropped.
func (l *Logger) Logf(level Level, file string, line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.m.Log(l.data(), uint32(level), abi.Str(file), int32(line), abi.Str(msg))
}

func (l *Logger) data() any {
	return l.view.Iface().Cb.Data
}

// loggerStateSize is the declared instance size of support.logger: a
// 4-byte cell holding the current level.
const loggerStateSize = 4

// loggerObject is the state behind a support.logger instance. The level
// lives in the instance block, read and written through the cell slice;
// the logrus backend hangs off the object header.
type loggerObject struct {
	log  *logrus.Logger
	cell []byte
}

func (lo *loggerObject) getLevel() Level {
	return Level(binary.LittleEndian.Uint32(lo.cell))
}

func (lo *loggerObject) setLevel(level Level) {
	binary.LittleEndian.PutUint32(lo.cell, uint32(level))
	lo.log.SetLevel(level.toLogrus())
}

func (lo *loggerObject) emit(level Level, file string, line int32, msg string) {
	if level == LevelNone {
		return
	}
	lo.log.WithFields(logrus.Fields{
		"file": file,
		"line": line,
	}).Log(level.toLogrus(), msg)
}

func loggerFactory() *abi.Factory {
	return &abi.Factory{
		Version:           1,
		Name:              abi.Str(LoggerName),
		Info:              abi.Dict("factory.usage", "log.level=<0..5>"),
		GetSize:           func(*abi.Factory, *abi.RawDict) uint32 { return loggerStateSize },
		Init:              initLogger,
		EnumInterfaceInfo: singleInterface(TypeLogger),
	}
}

func initLogger(_ *abi.Factory, obj *abi.Object, block []byte, args *abi.RawDict) int32 {
	lo := &loggerObject{log: logrus.New(), cell: block[:loggerStateSize]}
	lo.log.SetOutput(os.Stderr)
	lo.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level := LevelInfo
	if s, ok := dict.View(args).Get("log.level"); ok {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil || Level(n) > LevelTrace {
			return result.Errno(syscall.EINVAL).Raw()
		}
		level = Level(n)
	}
	lo.setLevel(level)

	iface := &abi.Interface{
		Type:    abi.Str(TypeLogger),
		Version: VersionLogger,
		Cb: abi.Callbacks{
			Funcs: &LoggerMethods{
				Version: VersionLogger,
				GetLevel: func(data any) uint32 {
					return uint32(data.(*loggerObject).getLevel())
				},
				SetLevel: func(data any, level uint32) {
					data.(*loggerObject).setLevel(Level(level))
				},
				Log: func(data any, level uint32, file []byte, line int32, msg []byte) {
					f, _ := abi.GoStr(file)
					m, _ := abi.GoStr(msg)
					data.(*loggerObject).emit(Level(level), f, line, m)
				},
			},
			Data: lo,
		},
	}

	obj.Version = 1
	obj.Data = lo
	obj.GetInterface = func(_ *abi.Object, name []byte, out *any) int32 {
		if !abi.StrEq(name, TypeLogger) {
			return result.Errno(syscall.ENOENT).Raw()
		}
		*out = iface
		return 0
	}
	obj.Clear = func(o *abi.Object) int32 {
		o.Data = nil
		return 0
	}
	return 0
}

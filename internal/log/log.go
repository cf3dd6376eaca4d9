// Package log wraps a package-level zap sugared logger.
package log

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	log         atomic.Pointer[zap.SugaredLogger]
	defaultOnce sync.Once
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	log.Store(zapLogger.Sugar())
	return nil
}

// SetLogger replaces the package logger, mostly so tests can use zaptest or zap.NewNop.
func SetLogger(l *zap.Logger) {
	log.Store(l.WithOptions(zap.AddCallerSkip(1)).Sugar())
}

// sugared returns the current logger, installing a production logger on
// first use when neither Init nor SetLogger ran.
func sugared() *zap.SugaredLogger {
	if l := log.Load(); l != nil {
		return l
	}
	defaultOnce.Do(func() {
		zapLogger, err := zap.NewProduction(zap.AddCallerSkip(1))
		if err != nil {
			zapLogger = zap.NewNop()
		}
		log.CompareAndSwap(nil, zapLogger.Sugar())
	})
	return log.Load()
}

// Sync flushes any buffered log entries
func Sync() {
	if l := log.Load(); l != nil {
		_ = l.Sync()
	}
}

func Debugf(template string, args ...interface{}) {
	sugared().Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	sugared().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...interface{}) {
	sugared().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	sugared().Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugared().Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	sugared().Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	sugared().Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	sugared().Errorw(msg, keysAndValues...)
}

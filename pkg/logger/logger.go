package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/SecondBureau/adminsgrid/pkg/errortracking"
)

var Logger *zap.SugaredLogger
var tracker errortracking.Provider

// Init builds the package logger. Dev mode uses the human readable console
// encoder, production mode writes JSON.
func Init(dev bool) {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	Update(&cfg)
}

// InitWithPath builds the logger writing to the given file path.
func InitWithPath(path string, dev bool) {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{path}
	Update(&cfg)
}

// Update rebuilds the package logger from a zap config.
func Update(config *zap.Config) {
	fallback := zap.NewProductionConfig()
	fallback.OutputPaths = []string{"adminsgrid.log"}
	if config == nil {
		config = &fallback
	}

	l, err := config.Build()
	if err != nil {
		log.Print(err)
		return
	}
	Logger = l.Sugar()
	Info("adminsgrid logger initialized")
}

// InitErrorTracking wires an error tracking provider into the logger.
// Warn and Error messages are forwarded to it.
func InitErrorTracking(provider errortracking.Provider) {
	tracker = provider
	if tracker != nil {
		Info("error tracking initialized")
	}
}

// CloseErrorTracking flushes and closes the error tracking provider.
func CloseErrorTracking() error {
	if tracker != nil {
		tracker.Flush(5 * time.Second)
		return tracker.Close()
	}
	return nil
}

func Info(template string, args ...interface{}) {
	if Logger == nil {
		log.Printf(template, args...)
		return
	}
	Logger.Infow(fmt.Sprintf(template, args...), "process_id", os.Getpid())
}

func Debug(template string, args ...interface{}) {
	if Logger == nil {
		log.Printf(template, args...)
		return
	}
	Logger.Debugw(fmt.Sprintf(template, args...), "process_id", os.Getpid())
}

func Warn(template string, args ...interface{}) {
	message := fmt.Sprintf(template, args...)
	if Logger == nil {
		log.Printf("%s", message)
	} else {
		Logger.Warnw(message, "process_id", os.Getpid())
	}
	if tracker != nil {
		tracker.CaptureMessage(context.Background(), message, errortracking.SeverityWarning, map[string]interface{}{
			"process_id": os.Getpid(),
		})
	}
}

func Error(template string, args ...interface{}) {
	message := fmt.Sprintf(template, args...)
	if Logger == nil {
		log.Printf("%s", message)
	} else {
		Logger.Errorw(message, "process_id", os.Getpid())
	}
	if tracker != nil {
		tracker.CaptureMessage(context.Background(), message, errortracking.SeverityError, map[string]interface{}{
			"process_id": os.Getpid(),
		})
	}
}

// CatchPanic recovers a panic, logs it and reports it to the error tracker.
// Use as: defer logger.CatchPanic("Handler.List")
func CatchPanic(location string) {
	if r := recover(); r != nil {
		stack := debug.Stack()
		Error("Panic in %s: %v", location, r)
		if tracker != nil {
			tracker.CapturePanic(context.Background(), r, stack, map[string]interface{}{
				"location":   location,
				"process_id": os.Getpid(),
			})
		}
	}
}

// HandlePanic logs a recovered panic and returns it as an error. Call it with
// the result of recover() from a deferred function:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        err = logger.HandlePanic("MethodName", r)
//	    }
//	}()
func HandlePanic(method string, r any) error {
	stack := debug.Stack()
	Error("Panic in %s: %v\nStack trace:\n%s", method, r, string(stack))
	if tracker != nil {
		tracker.CapturePanic(context.Background(), r, stack, map[string]interface{}{
			"method":     method,
			"process_id": os.Getpid(),
		})
	}
	return fmt.Errorf("panic in %s: %v", method, r)
}

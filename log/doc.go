// Package log provides the leveled, printf-style logger used across medichat.
//
// Every component accepts a Logger. The production implementation is
// GologLogger, a thin wrapper over github.com/kataras/golog; NoOpLogger is
// handy in tests.
//
//	logger := log.New(os.Stderr, log.LogLevelInfo)
//	logger.Info("listening on %s", addr)
//
// Levels are parsed from configuration with ParseLogLevel:
//
//	level, err := log.ParseLogLevel(cfg.LogLevel)
//	if err != nil {
//		return err
//	}
//	log.SetLogLevel(level)
//
// A package-level logger is available through Debug, Info, Warn and Error for
// code that is not handed a Logger explicitly.
package log

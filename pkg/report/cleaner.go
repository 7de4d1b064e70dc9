package report

import (
	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

// CleanerFor builds the backtrace cleaner described by cfg.Backtrace, or
// returns nil when no cleaning is configured. The returned cleaner also
// abbreviates paths under cfg.ApplicationRoot.
func CleanerFor(cfg config.Config) trace.Cleaner {
	if !cfg.Backtrace.Enabled() {
		return nil
	}

	var opts []trace.CleanerOption
	if len(cfg.Backtrace.Silence) > 0 {
		opts = append(opts, trace.WithSilencedPatterns(cfg.Backtrace.Silence...))
	}
	if root := cfg.ApplicationRoot; root != "" {
		opts = append(opts, trace.WithFilter(func(file string) string { return Abbreviate(file, root) }))
	}
	if cfg.Backtrace.CollapseModulePaths {
		opts = append(opts, trace.WithFilter(trace.CollapseModulePaths))
	}
	return trace.NewCleaner(opts...)
}

package logger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LogIntercept logs a captured search API response
func LogIntercept(url string, status int, itemCount int) {
	GetLogger().WithFields(map[string]interface{}{
		"url":        url,
		"status":     status,
		"item_count": itemCount,
	}).Info("Captured search API response")
}

// LogHarvestProgress logs accumulation progress during a harvest
func LogHarvestProgress(keyword string, collected, target int) {
	percentage := 0.0
	if target > 0 {
		percentage = float64(collected) / float64(target) * 100
	}

	GetLogger().WithFields(map[string]interface{}{
		"keyword":    keyword,
		"collected":  collected,
		"target":     target,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Info("Harvest progress")
}

// LogScrollCycle logs a scroll iteration
func LogScrollCycle(keyword string, iteration, collected, fresh int) {
	GetLogger().WithFields(map[string]interface{}{
		"keyword":   keyword,
		"iteration": iteration,
		"collected": collected,
		"fresh":     fresh,
	}).Debug("Scroll cycle completed")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)

	if len(config) > 0 {
		logger = logger.WithFields(config)
	}

	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }

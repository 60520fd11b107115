// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"github.com/sirupsen/logrus"
)

// LogLevel controls the frequency and detail of driver diagnostics.
type LogLevel int

const (
	// LogNoop disables all output.
	LogNoop LogLevel = -1
	// LogIter prints one line per iteration: μ, DIMACS error, step lengths.
	LogIter LogLevel = 0
	// LogTrace additionally prints the residual breakdown and the backend
	// ("dense" or "sparse") for each iteration.
	LogTrace LogLevel = 1
	// LogVerbose additionally prints the direction-residual diagnostic
	// enabled by IPMCtrl.CheckResiduals. Equilibration scalings and the KKT
	// regularization vector are not logged.
	LogVerbose LogLevel = 2
)

// Logger adapts the teacher's level-gated logging shape (lbfgsb.Logger) to
// a logrus sink, so a caller who already wires logrus hooks/formatters in
// their own process gets structured iteration fields for free.
type Logger struct {
	Level LogLevel
	entry *logrus.Entry
}

// NewLogger returns a Logger at the given level using logrus's standard
// logger. Use WithEntry to route output through a caller-configured
// *logrus.Logger instead.
func NewLogger(level LogLevel) *Logger {
	return &Logger{Level: level, entry: logrus.NewEntry(logrus.StandardLogger())}
}

// WithEntry returns a copy of l that logs through entry instead of the
// standard logger.
func (l *Logger) WithEntry(entry *logrus.Entry) *Logger {
	if l == nil {
		return &Logger{Level: LogNoop, entry: entry}
	}
	return &Logger{Level: l.Level, entry: entry}
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) iteration(iter int, mu, dimacs, alphaP, alphaD float64) {
	if !l.enable(LogIter) {
		return
	}
	l.entry.WithFields(logrus.Fields{
		"iter":   iter,
		"mu":     mu,
		"dimacs": dimacs,
		"alphaP": alphaP,
		"alphaD": alphaD,
	}).Info("ipm iteration")
}

func (l *Logger) trace(iter int, rbConv, rcConv, rhConv float64, mode string) {
	if !l.enable(LogTrace) {
		return
	}
	l.entry.WithFields(logrus.Fields{
		"iter":   iter,
		"rbConv": rbConv,
		"rcConv": rcConv,
		"rhConv": rhConv,
		"mode":   mode,
	}).Debug("ipm residuals")
}

func (l *Logger) verbose(msg string, fields logrus.Fields) {
	if !l.enable(LogVerbose) {
		return
	}
	l.entry.WithFields(fields).Trace(msg)
}

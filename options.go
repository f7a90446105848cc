// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package uasset

import (
	"os"

	"github.com/go-kratos/kratos/v2/log"
)

// Options controls how a Document is decoded, mirroring the teacher
// package's File Options (Fast, SectionEntropy, ...).
type Options struct {
	// Strict turns an UnhandledPropertyType warning into a fatal decode
	// error instead of a best-effort struct-shaped fallback. Default false.
	// Answers spec.md §9 Open Question (c).
	Strict bool

	// Logger receives decode-time warnings (unknown property types; summary
	// anomalies are returned as errors instead). Defaults to a stdout logger
	// filtered to error level, same default as the teacher package.
	Logger log.Logger
}

func (o *Options) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		logger := log.NewStdLogger(os.Stdout)
		return log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(o.Logger)
}

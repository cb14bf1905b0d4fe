//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	assert.Equal(t, zapcore.DebugLevel, zapLevel.Level())
	SetLevel(LevelWarn)
	assert.Equal(t, zapcore.WarnLevel, zapLevel.Level())
	SetLevel(LevelError)
	assert.Equal(t, zapcore.ErrorLevel, zapLevel.Level())
	SetLevel("nonsense")
	assert.Equal(t, zapcore.InfoLevel, zapLevel.Level())
}

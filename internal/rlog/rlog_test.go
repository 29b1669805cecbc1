package rlog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
)

func TestLoggerWarnFormatsFieldsInStableOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := rlog.New(&buf)

	logger.Warn(rlog.Summary, "malformed constant token", rlog.Fields{
		"function": "napi_create_int32",
		"module":   "libentry.so",
		"token":    "long nope",
	})

	out := buf.String()
	assert.Contains(t, out, "[WARN] summary: malformed constant token")
	assert.True(t, strings.Index(out, "function=") < strings.Index(out, "module="))
	assert.True(t, strings.Index(out, "module=") < strings.Index(out, "token="))
}

func TestLoggerTracksWarnCount(t *testing.T) {
	logger := rlog.New(&bytes.Buffer{})

	logger.Warn(rlog.Resolve, "unresolved call site", nil)
	logger.Warn(rlog.Lower, "insufficient operands", nil)
	logger.Error(rlog.Assemble, "signature lookup miss", nil)

	assert.Equal(t, 2, logger.WarnCount())
	assert.Len(t, logger.Records(), 3)
}

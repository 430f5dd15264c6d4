package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/user"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())
	logger.Enable(false)

	usr := user.User{ID: "42", Username: "ed", Email: "ed@test.in"}
	logger.Error("querying events", errors.New("connection refused"), usr)
	logger.Info("listening")

	assert.Equal(t, "ERROR: querying events\nconnection refused\nuser: ed (42)\nINFO: listening\n", buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{}
	err := errors.New("boom")
	extras := map[string]interface{}{"path": "/v1/events"}

	got := logger.prepare("msg", []interface{}{err, user.User{ID: "1"}, extras, user.User{ID: "2"}})
	assert.Equal(t, []interface{}{"msg", err, extras}, got)
}

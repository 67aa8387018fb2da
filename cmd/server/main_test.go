package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownStopsEveryComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var stopped []string
	stop := func(name string, err error) component {
		return component{name: name, stop: func(context.Context) error {
			stopped = append(stopped, name)
			return err
		}}
	}

	shutdown(context.Background(), logger,
		stop("HTTP server", errors.New("listener already closed")),
		stop("gRPC server", nil),
		stop("scheduler", nil),
	)

	assert.Equal(t, []string{"HTTP server", "gRPC server", "scheduler"}, stopped)
	assert.Contains(t, buf.String(), "HTTP server shutdown error")
	assert.Contains(t, buf.String(), "listener already closed")
}

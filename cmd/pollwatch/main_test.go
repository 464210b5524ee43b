package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"none", []string{"watch", "/srv"}, ""},
		{"separate value", []string{"--config", "c.yaml", "watch"}, "c.yaml"},
		{"equals", []string{"watch", "--config=/etc/pollwatch.yaml"}, "/etc/pollwatch.yaml"},
		{"dangling flag", []string{"watch", "--config"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, configPathFromArgs(tt.args))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{envLocal, envDev, envProd, "other"} {
		assert.NotNil(t, setupLogger(env), env)
	}
}

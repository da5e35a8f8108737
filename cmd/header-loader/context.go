package main

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/config"
	"github.com/palfa/commondb/pkg/connector"
)

type commandContext struct {
	envFlag *string

	configOnce sync.Once
	config     *config.Config
	logger     *zap.Logger
	configErr  error
}

func newCommandContext(envFlag *string) *commandContext {
	return &commandContext{envFlag: envFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.envFlag != nil {
			path = strings.TrimSpace(*c.envFlag)
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			c.configErr = err
			return
		}
		logger, err := cfg.NewLogger()
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

func (c *commandContext) sync() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// connect opens the named database target
func (c *commandContext) connect(ctx context.Context, target string) (connector.Connector, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return connector.NewRegistry(cfg, c.log()).Connect(ctx, target)
}

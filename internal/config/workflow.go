package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/bleak/internal/checkpoints"
	"github.com/JaimeStill/bleak/internal/workflow"
)

const (
	EnvWorkflowEntryPoint  = "BLEAK_WORKFLOW_ENTRY_POINT"
	EnvWorkflowMaxSteps    = "BLEAK_WORKFLOW_MAX_STEPS"
	EnvWorkflowAutoArchive = "BLEAK_WORKFLOW_AUTO_ARCHIVE"

	EnvCheckpointsDriver      = "BLEAK_CHECKPOINTS_DRIVER"
	EnvCheckpointsAutoMigrate = "BLEAK_CHECKPOINTS_AUTO_MIGRATE"
)

// WorkflowConfig controls how threads are driven.
type WorkflowConfig struct {
	EntryPoint  string `toml:"entry_point"`
	MaxSteps    int    `toml:"max_steps"`
	AutoArchive bool   `toml:"auto_archive"`
}

// Entry returns the configured entry step.
func (c *WorkflowConfig) Entry() workflow.StepName {
	return workflow.StepName(c.EntryPoint)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.EntryPoint != "" {
		c.EntryPoint = overlay.EntryPoint
	}
	if overlay.MaxSteps != 0 {
		c.MaxSteps = overlay.MaxSteps
	}
	if overlay.AutoArchive {
		c.AutoArchive = true
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.EntryPoint == "" {
		c.EntryPoint = string(workflow.StepGenerateOrImprove)
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 25
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowEntryPoint); v != "" {
		c.EntryPoint = v
	}
	if v := os.Getenv(EnvWorkflowMaxSteps); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSteps = n
		}
	}
	if v := os.Getenv(EnvWorkflowAutoArchive); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoArchive = b
		}
	}
}

func (c *WorkflowConfig) validate() error {
	switch workflow.StepName(c.EntryPoint) {
	case workflow.StepGenerateOrImprove, workflow.StepAskQuestions:
	default:
		return fmt.Errorf("invalid entry_point: %s", c.EntryPoint)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative")
	}
	return nil
}

// CheckpointsConfig selects the checkpoint store.
type CheckpointsConfig struct {
	Driver      string `toml:"driver"`
	AutoMigrate *bool  `toml:"auto_migrate"`
}

// Persistent reports whether checkpoints are stored in a database.
func (c *CheckpointsConfig) Persistent() bool {
	return c.Driver != checkpoints.DriverMemory
}

// Migrate reports whether migrations run at startup.
func (c *CheckpointsConfig) Migrate() bool {
	return c.Persistent() && c.AutoMigrate != nil && *c.AutoMigrate
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CheckpointsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *CheckpointsConfig) Merge(overlay *CheckpointsConfig) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.AutoMigrate != nil {
		v := *overlay.AutoMigrate
		c.AutoMigrate = &v
	}
}

func (c *CheckpointsConfig) loadDefaults() {
	if c.Driver == "" {
		c.Driver = checkpoints.DriverSQLite
	}
	if c.AutoMigrate == nil {
		v := c.Driver == checkpoints.DriverSQLite
		c.AutoMigrate = &v
	}
}

func (c *CheckpointsConfig) loadEnv() {
	if v := os.Getenv(EnvCheckpointsDriver); v != "" {
		c.Driver = v
	}
	if v := os.Getenv(EnvCheckpointsAutoMigrate); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoMigrate = &b
		}
	}
}

func (c *CheckpointsConfig) validate() error {
	switch c.Driver {
	case checkpoints.DriverMemory, checkpoints.DriverPostgres, checkpoints.DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported driver: %s", c.Driver)
	}
}

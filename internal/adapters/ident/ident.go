// Package ident generates unique job ids.
package ident

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.trai.ch/zerr"
)

// Generator produces process-unique, roughly time-ordered ids.
type Generator struct {
	node *snowflake.Node
}

// New creates a Generator for the given machine id (0-1023).
func New(machineID int64) (*Generator, error) {
	node, err := snowflake.NewNode(machineID)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create snowflake node")
	}
	return &Generator{node: node}, nil
}

// NewFromEnv reads LOOM_MACHINE_ID, defaulting to 0.
func NewFromEnv() (*Generator, error) {
	machineID := int64(0)
	if raw := os.Getenv("LOOM_MACHINE_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, zerr.Wrap(err, "invalid LOOM_MACHINE_ID")
		}
		machineID = parsed
	}
	return New(machineID)
}

// NewID returns a new unique id.
func (g *Generator) NewID() string {
	return g.node.Generate().String()
}

package neopersist

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Constraint is a named schema statement applied at startup.
type Constraint struct {
	Name      string
	Statement string
}

// UniqueConstraint builds an idempotent uniqueness constraint on label.prop.
func UniqueConstraint(name, label, prop string) Constraint {
	return Constraint{
		Name: name,
		Statement: fmt.Sprintf(
			"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.`%s` IS UNIQUE",
			name, label, prop,
		),
	}
}

// EnsureConstraints issues every constraint statement in order. A failing
// statement is logged and skipped; the runner stays usable either way.
// It returns the number of statements that were applied.
func EnsureConstraints(ctx context.Context, runner DBRunner, logger *zap.Logger, constraints ...Constraint) int {
	applied := 0
	for _, c := range constraints {
		if _, err := runner.Run(ctx, c.Statement, nil); err != nil {
			logger.Warn("could not create constraint",
				zap.String("constraint", c.Name),
				zap.Error(err),
			)
			continue
		}
		applied++
		logger.Debug("constraint ensured", zap.String("constraint", c.Name))
	}
	return applied
}

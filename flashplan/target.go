package flashplan

import (
	"context"

	"github.com/pkg/errors"

	"github.com/feedctl/go-flashplan/flashplan/config"
	"github.com/feedctl/go-flashplan/flashplan/config/board"
)

// DefaultTargetsPath is where the build checks expect the target table.
const DefaultTargetsPath = "./pkl/targets.pkl"

// LoadTargets evaluates the pkl target table at the given path.
func LoadTargets(ctx context.Context, path string) (*config.TargetConfig, error) {
	return config.LoadFromPath(ctx, path)
}

// TargetForBoard returns the target description of a board revision.
func TargetForBoard(conf *config.TargetConfig, b board.Board) (*config.Target, error) {
	for rev, target := range conf.Targets {
		if rev != b {
			continue
		}
		return target, nil
	}
	return nil, errors.Errorf("flashplan: board %q is not registered", b)
}

// PlanForBoard loads the target table and computes the plan for a board
// revision in one step.
func PlanForBoard(ctx context.Context, path string, b board.Board) (*Plan, error) {
	conf, err := LoadTargets(ctx, path)
	if err != nil {
		return nil, err
	}
	target, err := TargetForBoard(conf, b)
	if err != nil {
		return nil, err
	}
	return NewPlan(target)
}

package main

import (
	"context"
	"fmt"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/git"
	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/registry"
	"github.com/lfrick/tix/internal/resolve"
	"github.com/lfrick/tix/internal/suggest"
)

// newEngine wires the association store, repository registry, and
// resolver for the current working directory. Load-time recoveries
// (corrupt files, legacy migrations, duplicate repair) surface as
// warnings on the context logger.
func newEngine(ctx context.Context) (*resolve.Orchestrator, error) {
	l := log.FromContext(ctx)

	gitClient := git.NewCLI(cfg.GitTimeout())

	store, warnings, err := assoc.Open(workDir)
	if err != nil {
		return nil, fmt.Errorf("open association store: %w", err)
	}
	for _, w := range warnings {
		l.Warnf("%s", w)
	}

	reg, backup, err := registry.Load(gitClient)
	if err != nil {
		return nil, fmt.Errorf("load repository registry: %w", err)
	}
	if backup != "" {
		l.Warnf("repository registry was unreadable and has been reset, backup at %s", backup)
	}

	engine, err := suggest.New(cfg.Provider, cfg.Pattern)
	if err != nil {
		return nil, err
	}

	r := resolve.New(ctx, store, reg, gitClient, engine, workDir)
	return resolve.NewOrchestrator(r), nil
}

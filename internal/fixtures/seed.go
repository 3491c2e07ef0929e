package fixtures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
)

// SeededWorkers maps each seeded full name to its stored ID.
type SeededWorkers map[string]string

// SeedWorkforce stores the default workforce, skipping names that already
// exist so it can be re-run.
func SeedWorkforce(ctx context.Context, repo worker.Repository) (SeededWorkers, error) {
	existing, err := repo.List(ctx, worker.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	seeded := make(SeededWorkers, len(existing))
	for _, w := range existing {
		seeded[w.FullName] = w.ID
	}

	for _, w := range GetDefaultWorkforce() {
		if _, ok := seeded[w.FullName]; ok {
			continue
		}
		saved, err := repo.Save(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("failed to seed worker %q: %w", w.FullName, err)
		}
		seeded[saved.FullName] = saved.ID
		slog.Info("worker seeded", "worker_id", saved.ID, "name", saved.FullName, "role", saved.Role)
	}
	return seeded, nil
}

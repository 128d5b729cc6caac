// Package plan reads a plan directory: the local input to sail. A plan
// directory carries a spec document, a verify script, a voyage
// configuration file recommending a ship count and naming the upstream
// repository, and a tasks/ subdirectory of pre-authored task files.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Plan is a validated, fully-read plan directory.
type Plan struct {
	Dir              string
	Repo             string
	Objective        string
	RecommendedShips int
	Spec             []byte
	Verify           []byte
	Tasks            []domain.Task
}

// manifest is the shape of the plan directory's voyage.json, distinct
// from the storage VM's voyage descriptor (domain.Voyage): this one
// only recommends inputs to sail, it is never itself persisted.
type manifest struct {
	Repo             string `json:"repo"`
	Objective        string `json:"objective"`
	RecommendedShips int    `json:"recommended_ships"`
}

// Load reads and validates a plan directory. Every listed piece must be
// present: a missing spec, verify script, voyage manifest, or tasks
// directory is reported as ErrInvalidPlan rather than sail discovering
// the gap mid-launch.
func Load(dir string) (Plan, error) {
	specPath := filepath.Join(dir, constants.PlanSpecFile)
	spec, err := os.ReadFile(specPath) //#nosec G304 -- operator-supplied plan directory path
	if err != nil {
		return Plan{}, fmt.Errorf("%w: read %s: %w", voyageerr.ErrInvalidPlan, specPath, err)
	}

	verifyPath := filepath.Join(dir, constants.PlanVerifyFile)
	verify, err := os.ReadFile(verifyPath) //#nosec G304 -- operator-supplied plan directory path
	if err != nil {
		return Plan{}, fmt.Errorf("%w: read %s: %w", voyageerr.ErrInvalidPlan, verifyPath, err)
	}

	manifestPath := filepath.Join(dir, constants.PlanVoyageFile)
	manifestData, err := os.ReadFile(manifestPath) //#nosec G304 -- operator-supplied plan directory path
	if err != nil {
		return Plan{}, fmt.Errorf("%w: read %s: %w", voyageerr.ErrInvalidPlan, manifestPath, err)
	}
	var m manifest
	if err := json.Unmarshal(manifestData, &m); err != nil {
		return Plan{}, fmt.Errorf("%w: parse %s: %w", voyageerr.ErrInvalidPlan, manifestPath, err)
	}
	if m.Repo == "" {
		return Plan{}, fmt.Errorf("%w: %s: repo must not be empty", voyageerr.ErrInvalidPlan, manifestPath)
	}

	tasks, err := loadTasks(filepath.Join(dir, constants.PlanTasksDir))
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Dir:              dir,
		Repo:             m.Repo,
		Objective:        m.Objective,
		RecommendedShips: m.RecommendedShips,
		Spec:             spec,
		Verify:           verify,
		Tasks:            tasks,
	}, nil
}

func loadTasks(tasksDir string) ([]domain.Task, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return nil, fmt.Errorf("%w: read tasks directory %s: %w", voyageerr.ErrInvalidPlan, tasksDir, err)
	}

	tasks := make([]domain.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(tasksDir, entry.Name())
		data, err := os.ReadFile(path) //#nosec G304 -- path built from a directory listing of the operator-supplied plan directory
		if err != nil {
			return nil, fmt.Errorf("%w: read task file %s: %w", voyageerr.ErrInvalidPlan, path, err)
		}

		task, err := domain.ParseTask(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parse task file %s: %w", voyageerr.ErrInvalidPlan, path, err)
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	if len(tasks) == 0 {
		return nil, nil
	}

	return tasks, nil
}

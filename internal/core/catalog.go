package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/flowplane/internal/engine"
	"github.com/edvin/flowplane/internal/metrics"
	"github.com/edvin/flowplane/internal/model"
	"github.com/edvin/flowplane/internal/platform"
)

const (
	libraryTag        = "library"
	catalogFetchLimit = 4
)

// CatalogService mirrors the engine's library workflows into local templates.
type CatalogService struct {
	engine    Engine
	workflows WorkflowStore
}

func NewCatalogService(eng Engine, workflows WorkflowStore) *CatalogService {
	return &CatalogService{engine: eng, workflows: workflows}
}

// IsLibraryTemplate reports whether an engine workflow belongs in the catalog:
// tagged with something containing "library" and not itself a tenant copy.
func IsLibraryTemplate(w *engine.Workflow) bool {
	return w.HasTagContaining(libraryTag) && !strings.Contains(w.Name, model.NameSeparator)
}

// SyncFromEngine upserts every library workflow as a template. Rows already
// written stay when a later step fails; a rerun converges.
func (s *CatalogService) SyncFromEngine(ctx context.Context) (result model.SyncResult, err error) {
	defer func() {
		metrics.CatalogSyncs.WithLabelValues(metrics.Outcome(err)).Inc()
	}()

	listed, err := s.engine.ListWorkflows(ctx)
	if err != nil {
		return result, fmt.Errorf("list engine workflows: %w", err)
	}

	var candidates []engine.Workflow
	for i := range listed {
		if IsLibraryTemplate(&listed[i]) {
			candidates = append(candidates, listed[i])
		}
	}

	full := make([]*engine.Workflow, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogFetchLimit)
	for i, c := range candidates {
		g.Go(func() error {
			w, err := s.engine.GetWorkflow(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("fetch template %s: %w", c.ID, err)
			}
			full[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for _, w := range full {
		tpl := &model.WorkflowTemplate{
			ID:               platform.NewID(),
			EngineWorkflowID: w.ID,
			Name:             w.Name,
			Definition:       w.Raw,
		}
		created, err := s.workflows.UpsertTemplate(ctx, tpl)
		if err != nil {
			return result, fmt.Errorf("sync template %s: %w", w.ID, err)
		}
		if created {
			result.Created++
			metrics.CatalogTemplatesSynced.WithLabelValues("created").Inc()
		} else {
			result.Updated++
			metrics.CatalogTemplatesSynced.WithLabelValues("updated").Inc()
		}
	}

	zerolog.Ctx(ctx).Info().
		Int("listed", len(listed)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Msg("catalog synced from engine")

	return result, nil
}

func (s *CatalogService) ListTemplates(ctx context.Context) ([]model.WorkflowTemplate, error) {
	templates, err := s.workflows.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i].Definition = nil
	}
	return templates, nil
}

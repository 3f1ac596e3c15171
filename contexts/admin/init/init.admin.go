// Package init is the context's startup API.
//
// Put all initialisations here.
// For example, load context-specific configuration, setup dependency injection,
// register routes, workers and more.
package init

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/go-arrower/schoolstore"
	"github.com/go-arrower/schoolstore/alog"
	"github.com/go-arrower/schoolstore/app"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/domain"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/interfaces/repository"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/interfaces/web"
	slotrepo "github.com/go-arrower/schoolstore/repository"
)

const contextName = "admin"

var ErrUnknownEntity = application.ErrUnknownEntity

func NewAdminContext(ctx context.Context, di *schoolstore.Container) (*AdminContext, error) {
	err := ensureRequiredDependencies(di)
	if err != nil {
		return nil, fmt.Errorf("missing dependencies to initialise context admin: %w", err)
	}

	admin, err := setupAdminContext(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise context admin: %w", err)
	}

	di.Logger.DebugContext(ctx, "context admin initialised", slog.Any("sections", admin.Sections()))

	return admin, nil
}

// AdminContext manages the record sections: books, rewards, store-items, and students.
type AdminContext struct {
	globalContainer *schoolstore.Container

	sections map[string]Section
	order    []string

	routesController *web.RoutesController
}

func (c *AdminContext) Shutdown(_ context.Context) error {
	return nil
}

// Sections returns the names of all registered sections, in registration order.
func (c *AdminContext) Sections() []string {
	return slices.Clone(c.order)
}

// Section returns the section registered under name.
func (c *AdminContext) Section(name string) (Section, error) { //nolint:ireturn // sections differ by record type
	section, ok := c.sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s, use one of: %v", ErrUnknownEntity, name, c.order)
	}

	return section, nil
}

func ensureRequiredDependencies(di *schoolstore.Container) error {
	if di == nil {
		return fmt.Errorf("%w: container", schoolstore.ErrMissingDependency)
	}

	if di.Logger == nil {
		return fmt.Errorf("%w: logger", schoolstore.ErrMissingDependency)
	}

	if di.Config == nil {
		return fmt.Errorf("%w: config", schoolstore.ErrMissingDependency)
	}

	if di.Store == nil {
		return fmt.Errorf("%w: store", schoolstore.ErrMissingDependency)
	}

	if di.WebRouter == nil {
		return fmt.Errorf("%w: web router", schoolstore.ErrMissingDependency)
	}

	if di.APIRouter == nil {
		return fmt.Errorf("%w: api router", schoolstore.ErrMissingDependency)
	}

	if di.AdminRouter == nil {
		return fmt.Errorf("%w: admin router", schoolstore.ErrMissingDependency)
	}

	if di.TraceProvider == nil || di.MeterProvider == nil {
		return fmt.Errorf("%w: telemetry providers", schoolstore.ErrMissingDependency)
	}

	return nil
}

func setupAdminContext(di *schoolstore.Container) (*AdminContext, error) {
	logger := di.Logger.With(slog.String("context", contextName))

	opts, err := di.RepositoryOptions()
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the caller
	}

	admin := &AdminContext{
		globalContainer:  di,
		sections:         map[string]Section{},
		routesController: web.NewRoutesController(di.WebRouter),
	}

	validate := validator.New()

	registerSection[domain.Book, domain.BookPatch](admin, logger, validate, opts, domain.Books())
	registerSection[domain.Reward, domain.RewardPatch](admin, logger, validate, opts, domain.Rewards())
	registerSection[domain.StoreItem, domain.StoreItemPatch](admin, logger, validate, opts, domain.StoreItems())
	registerSection[domain.Student, domain.StudentPatch](admin, logger, validate, opts, domain.Students())

	registerAdminRoutes(admin)

	return admin, nil
}

// registerSection wires the repository, use cases, and web routes of one section.
func registerSection[E any, P any](
	admin *AdminContext,
	logger alog.Logger,
	validate *validator.Validate,
	opts []slotrepo.Option,
	section domain.Section[E],
) {
	di := admin.globalContainer

	repo := repository.NewTracedRecordsRepository(
		section.Name,
		repository.NewRecordsRepository(di.Store, section, opts...),
	)

	appDI := setupApplication[E, P](di, logger, validate, repo, section)

	web.NewRecordsController(logger, section.Name, section.Attachment, appDI).
		Register(di.APIRouter.Group("/" + section.Name))

	admin.sections[section.Name] = &entitySection[E, P]{name: section.Name, app: appDI}
	admin.order = append(admin.order, section.Name)
}

func setupApplication[E any, P any](
	di *schoolstore.Container,
	logger alog.Logger,
	validate *validator.Validate,
	repo application.Repository[E],
	section domain.Section[E],
) application.App[E, P] {
	base := application.NewApp[E, P](repo, section.Search...)

	return application.App[E, P]{
		ListRecords: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedQuery(validate, base.ListRecords),
		),
		GetRecord: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedQuery(validate, base.GetRecord),
		),
		ExportRecords: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedQuery(validate, base.ExportRecords),
		),
		CreateRecord: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedRequest(validate, base.CreateRecord),
		),
		UpdateRecord: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedRequest(validate, base.UpdateRecord),
		),
		DeleteRecord: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedRequest(validate, base.DeleteRecord),
		),
		ResetRecords: app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedRequest(validate, base.ResetRecords),
		),
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/strut-web/strut/framework/config"
	"github.com/strut-web/strut/framework/container"
	"github.com/strut-web/strut/framework/dispatch"
	strhttp "github.com/strut-web/strut/framework/http"
	"github.com/strut-web/strut/framework/providers"
	"github.com/strut-web/strut/framework/routing"
)

// Application is the top-level kernel. It owns the IoC Container, the
// provider registry, the route matcher, and the middleware chain, and wires
// them into a Dispatcher at Boot. User code registers views, middleware,
// and providers on it, then calls Run.
type Application struct {
	*container.Container
	Providers  *container.ProviderRegistry
	Matcher    *routing.Matcher
	Middleware *dispatch.Chain

	dispatcher *dispatch.Dispatcher
	cfg        *config.Config
	log        zerolog.Logger
	booted     bool
	mounts     []mount
}

type mount struct {
	pattern string
	handler http.Handler
}

// New creates the application and registers the framework core providers.
func New(envFiles ...string) (*Application, error) {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container:  c,
		Providers:  registry,
		Matcher:    routing.NewMatcher(),
		Middleware: dispatch.NewChain(),
	}

	err := registry.Register(
		&providers.ConfigProvider{EnvFiles: envFiles},
		&providers.LoggerProvider{},
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Provide adds ServiceProviders to the application.
func (a *Application) Provide(ps ...container.ServiceProvider) error {
	return a.Providers.Register(ps...)
}

// Use appends middleware to the chain.
func (a *Application) Use(mws ...dispatch.Middleware) {
	a.Middleware.Use(mws...)
}

// RegisterView compiles a view's routes into the matcher. Pattern errors are
// fatal at startup, not at request time.
func (a *Application) RegisterView(views ...*dispatch.View) error {
	for _, view := range views {
		if view.Handle == nil {
			return fmt.Errorf("app: view %q has no handler", view.Name)
		}
		if len(view.Routes) == 0 {
			return fmt.Errorf("app: view %q declares no routes", view.Name)
		}
		for _, def := range view.Routes {
			rt, err := routing.NewRoute(def.Pattern, def.Methods, view)
			if err != nil {
				return fmt.Errorf("app: view %q: %w", view.Name, err)
			}
			a.Matcher.Add(rt)
		}
	}
	return nil
}

// Boot runs the provider Boot phase, validates the dependency graph, and
// assembles the Dispatcher. Idempotent.
func (a *Application) Boot() error {
	if a.booted {
		return nil
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}

	cfg, err := container.ResolveAs[*config.Config](a.Container, "config", nil)
	if err != nil {
		return err
	}
	log, err := container.ResolveAs[zerolog.Logger](a.Container, "logger", nil)
	if err != nil {
		return err
	}
	if err := a.Container.Validate(); err != nil {
		return err
	}
	if err := a.validateViewDeps(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.dispatcher = &dispatch.Dispatcher{
		Matcher:    a.Matcher,
		Container:  a.Container,
		Middleware: a.Middleware,
		Log:        log,
		Debug:      cfg.App.Debug && !cfg.IsProduction(),
	}
	a.booted = true
	return nil
}

// validateViewDeps checks every Uses declaration against the container, so a
// misspelled binding fails at startup instead of on the first request.
func (a *Application) validateViewDeps() error {
	for _, rt := range a.Matcher.Routes() {
		view, ok := rt.Handler().(*dispatch.View)
		if !ok {
			continue
		}
		for _, id := range view.Uses {
			if !a.Container.Has(id) {
				return fmt.Errorf("app: view %q uses unregistered binding [%s]", view.Name, id)
			}
		}
	}
	return nil
}

// Config returns the loaded configuration. Valid after Boot.
func (a *Application) Config() *config.Config { return a.cfg }

// Log returns the process logger. Valid after Boot.
func (a *Application) Log() zerolog.Logger { return a.log }

// Mount attaches a plain http.Handler outside the view lifecycle, for
// infrastructure endpoints like Prometheus scraping. Mounted patterns take
// precedence over views.
func (a *Application) Mount(pattern string, handler http.Handler) {
	a.mounts = append(a.mounts, mount{pattern: pattern, handler: handler})
}

// Handler returns the http.Handler serving the application: a chi mux with
// the transport-level middleware, delegating every path to the dispatcher.
func (a *Application) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	for _, m := range a.mounts {
		mux.Handle(m.pattern, m.handler)
	}
	mux.Handle("/*", http.HandlerFunc(a.serve))
	return mux
}

func (a *Application) serve(w http.ResponseWriter, r *http.Request) {
	req := a.wrapRequest(r)
	res := strhttp.NewResponse()
	ctx := dispatch.NewContext(req, res)

	a.dispatcher.Dispatch(ctx)

	if err := res.Finalize(w, r.Method == http.MethodHead); err != nil {
		a.log.Error().Err(err).Msg("response write failed")
	}
}

func (a *Application) wrapRequest(r *http.Request) *strhttp.Request {
	req := strhttp.NewRequest(r)
	if a.cfg != nil && a.cfg.Server.MaxBodyBytes > 0 {
		req.LimitBody(a.cfg.Server.MaxBodyBytes)
	}
	return req
}

// Run boots the application (if needed) and serves HTTP until the process
// receives SIGINT/SIGTERM, then drains within the shutdown timeout and
// disposes singletons.
func (a *Application) Run() error {
	if err := a.Boot(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + a.cfg.App.Port,
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("addr", srv.Addr).
			Str("env", a.cfg.App.Env).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if closeErr := a.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// Close disposes singleton instances. Called automatically by Run on
// shutdown; call it directly when embedding the application elsewhere.
func (a *Application) Close() error {
	return a.Container.Close()
}

// Environment helpers, valid after Boot.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsProduction() bool  { return a.cfg.IsProduction() }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }

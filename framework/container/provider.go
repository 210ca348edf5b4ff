package container

// ── ServiceProvider interface ────────────────────────────────────────────────

// ServiceProvider groups related registrations behind a two-phase bootstrap.
//
// Register binds factories into the container; it must not resolve anything.
// Boot runs after ALL providers have been registered, so it is safe to
// resolve other bindings there.
//
//	type StoreProvider struct{ container.BaseProvider }
//
//	func (p *StoreProvider) Register(c *container.Container) error {
//	    c.Register("store", func(r *container.Resolver) (any, error) {
//	        cfg, err := r.Resolve("config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return OpenStore(cfg.(*config.Config)), nil
//	    }, container.Singleton, container.DependsOn("config"))
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	Register(c *Container) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error
}

// BaseProvider is an embeddable struct with a no-op Boot. Embed it and
// implement only Register.
type BaseProvider struct{}

func (BaseProvider) Boot(*Container) error { return nil }

// ── ProviderRegistry ─────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
// Providers register in order; Boot runs over them in the same order once all
// registrations are in.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds providers and runs their Register phase in order.
// Registering the same provider instance twice is a no-op. If the registry
// has already booted, each provider's Boot phase runs immediately after its
// Register phase.
func (r *ProviderRegistry) Register(providers ...ServiceProvider) error {
	for _, provider := range providers {
		if r.registered[provider] {
			continue
		}
		r.registered[provider] = true

		if err := provider.Register(r.app); err != nil {
			return err
		}
		r.providers = append(r.providers, provider)

		if r.booted {
			if err := provider.Boot(r.app); err != nil {
				return err
			}
		}
	}
	return nil
}

// Boot runs the Boot phase on all registered providers, once. Later calls are
// no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true once Boot has run.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }

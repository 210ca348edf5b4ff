package main

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/strut-web/strut/framework/app"
	"github.com/strut-web/strut/framework/container"
	"github.com/strut-web/strut/framework/dispatch"
	"github.com/strut-web/strut/framework/middleware"
	"github.com/strut-web/strut/framework/validation"
)

var errNotFound = errors.New("user not found")

// UserRepository is an in-memory stand-in for a real store.
type UserRepository struct {
	users map[int]map[string]any
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[int]map[string]any{
		1: {"id": 1, "name": "Alice", "email": "alice@example.com"},
		2: {"id": 2, "name": "Bob", "email": "bob@example.com"},
	}}
}

func (r *UserRepository) Find(id int) (map[string]any, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (r *UserRepository) All() []map[string]any {
	out := make([]map[string]any, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

// authGuard rejects requests without a bearer token before the handler runs.
type authGuard struct {
	dispatch.NopMiddleware
}

func (authGuard) BeforeHandler(ctx *dispatch.Context) error {
	if ctx.Request.BearerToken() == "" {
		ctx.Response.Unauthorized()
		ctx.EarlyReturn()
	}
	return nil
}

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	application, err := app.New()
	if err != nil {
		boot.Fatal().Err(err).Msg("bootstrap failed")
	}

	// ── Bindings ─────────────────────────────────────────────────────────────

	application.Container.Register("user.repository", func(r *container.Resolver) (any, error) {
		return NewUserRepository(), nil
	}, container.Singleton)

	// One audit trail per request, shared by every hook that resolves it.
	application.Container.Register("audit", func(r *container.Resolver) (any, error) {
		return &auditTrail{}, nil
	}, container.Scoped)

	// ── Middleware ───────────────────────────────────────────────────────────

	application.Use(
		middleware.RequestID{},
		middleware.NewMetrics(prometheus.DefaultRegisterer),
	)

	// ── Views ────────────────────────────────────────────────────────────────

	home := &dispatch.View{
		Name:   "home",
		Routes: []dispatch.RouteDef{{Pattern: "/", Methods: []string{"GET"}}},
		Handle: func(ctx *dispatch.Context) error {
			ctx.Response.Success(map[string]any{"message": "Welcome to Strut!"})
			return nil
		},
	}

	usersIndex := &dispatch.View{
		Name:   "users.index",
		Routes: []dispatch.RouteDef{{Pattern: "/api/v1/users", Methods: []string{"GET"}}},
		Uses:   []string{"user.repository"},
		Handle: func(ctx *dispatch.Context) error {
			repo := ctx.Dep("user.repository").(*UserRepository)
			ctx.Response.Success(repo.All())
			return nil
		},
	}

	usersShow := &dispatch.View{
		Name:   "users.show",
		Routes: []dispatch.RouteDef{{Pattern: "/api/v1/users/<id:int>", Methods: []string{"GET"}}},
		Uses:   []string{"user.repository"},
		Handle: func(ctx *dispatch.Context) error {
			repo := ctx.Dep("user.repository").(*UserRepository)
			user, err := repo.Find(ctx.Params.Int("id"))
			if err != nil {
				return err
			}
			ctx.Response.Success(user)
			return nil
		},
		OnException: func(ctx *dispatch.Context, err error) error {
			if errors.Is(err, errNotFound) {
				ctx.Response.NotFound("User not found.")
				return nil
			}
			return err
		},
	}

	usersCreate := &dispatch.View{
		Name:   "users.store",
		Routes: []dispatch.RouteDef{{Pattern: "/api/v1/users", Methods: []string{"POST"}}},
		Handle: func(ctx *dispatch.Context) error {
			var body struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Age   string `json:"age"`
			}
			if err := ctx.Request.Bind(&body); err != nil {
				ctx.Response.Error(http.StatusBadRequest, err.Error())
				return nil
			}

			v := validation.Make(map[string]string{
				"name":  body.Name,
				"email": body.Email,
				"age":   body.Age,
			}, validation.Rules{
				"name":  "required|min:2|max:100",
				"email": "required|email",
				"age":   "required|numeric|gte:18",
			})
			if v.Fails() {
				ctx.Response.ValidationError(v.Errors())
				return nil
			}

			ctx.Response.Created(map[string]any{"name": body.Name, "email": body.Email})
			return nil
		},
	}

	profile := &dispatch.View{
		Name:   "profile.show",
		Routes: []dispatch.RouteDef{{Pattern: "/profile", Methods: []string{"GET"}}},
		Before: func(ctx *dispatch.Context) error {
			audit, err := ctx.Resolve("audit")
			if err != nil {
				return err
			}
			audit.(*auditTrail).note("profile viewed")
			return nil
		},
		Handle: func(ctx *dispatch.Context) error {
			ctx.Response.Success(map[string]any{"user": "authenticated"})
			return nil
		},
	}

	application.Use(authGuardFor("/profile"))

	if err := application.RegisterView(home, usersIndex, usersShow, usersCreate, profile); err != nil {
		boot.Fatal().Err(err).Msg("view registration failed")
	}

	if err := application.Boot(); err != nil {
		boot.Fatal().Err(err).Msg("boot failed")
	}

	application.Mount("/metrics", promhttp.Handler())
	application.Use(middleware.NewAccessLog(application.Log()))

	if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog := application.Log()
		appLog.Fatal().Err(err).Msg("server error")
	}
}

// authGuardFor limits the auth guard to one path prefix.
func authGuardFor(prefix string) dispatch.Middleware {
	return pathScoped{prefix: prefix, inner: authGuard{}}
}

type pathScoped struct {
	dispatch.NopMiddleware
	prefix string
	inner  dispatch.Middleware
}

func (m pathScoped) BeforeHandler(ctx *dispatch.Context) error {
	if strings.HasPrefix(ctx.Request.Path(), m.prefix) {
		return m.inner.BeforeHandler(ctx)
	}
	return nil
}

type auditTrail struct {
	entries []string
}

func (a *auditTrail) note(entry string) { a.entries = append(a.entries, entry) }

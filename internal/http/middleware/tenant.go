package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/teamgrid/teamgrid/internal/domain"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// WorkspaceSlugHeader lets tenant-optional flows name a workspace explicitly
// when the request doesn't arrive on a workspace subdomain.
const WorkspaceSlugHeader = "X-Workspace-Slug"

// RouteClass says what a route expects of workspace resolution.
type RouteClass int

const (
	// RouteTenantRequired rejects requests with no resolvable workspace.
	// This is the default for unlisted routes: failing closed means a
	// forgotten route entry can't leak tenant-scoped access.
	RouteTenantRequired RouteClass = iota

	// RouteTenantOptional proceeds without a workspace but attaches one if
	// the host or header carries a resolvable slug.
	RouteTenantOptional

	// RouteTenantForbidden is for flows that must run outside any workspace,
	// e.g. registration.
	RouteTenantForbidden
)

// RouteTable is the declarative route classification the resolver consults.
// It is configuration data, not logic: plain maps of exact request path to
// classification, plus the short allow-list of routes permitted to operate
// on a deactivated workspace (e.g. reactivation).
type RouteTable struct {
	Classes         map[string]RouteClass
	InactiveAllowed map[string]bool
}

// ClassOf returns the classification for a path, defaulting to
// tenant-required.
func (rt *RouteTable) ClassOf(path string) RouteClass {
	if class, ok := rt.Classes[path]; ok {
		return class
	}
	return RouteTenantRequired
}

// AllowsInactive reports whether the route may operate on a deactivated
// workspace.
func (rt *RouteTable) AllowsInactive(path string) bool {
	return rt.InactiveAllowed[path]
}

// TenantResolver derives the workspace for each request from the Host
// header's first DNS label (or the slug header on tenant-optional routes),
// loads the registry row, and attaches it to the request context. Everything
// downstream reads the workspace from context and never re-derives it.
type TenantResolver struct {
	repo   domain.WorkspaceRepository
	routes *RouteTable
	logger logger.Logger
}

// NewTenantResolver creates the resolver middleware component.
func NewTenantResolver(repo domain.WorkspaceRepository, routes *RouteTable, logger logger.Logger) *TenantResolver {
	return &TenantResolver{
		repo:   repo,
		routes: routes,
		logger: logger,
	}
}

// ExtractSlug returns the candidate workspace slug from a request host.
// Deliberately naive: split on dots and take the first label. No
// public-suffix awareness is needed because the system controls its own
// domain shape. A single-label host (bare domain, localhost) has no
// workspace subdomain.
func ExtractSlug(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || host == "localhost" {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}
	return labels[0]
}

// Middleware resolves the workspace per request. Terminal outcomes:
// resolved-with-workspace (attached to context), resolved-without (context
// untouched), or rejected with a machine-readable reason code before any
// tenant-scoped query can run.
func (tr *TenantResolver) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := tr.routes.ClassOf(r.URL.Path)

			if class == RouteTenantForbidden {
				next.ServeHTTP(w, r)
				return
			}

			slug := ExtractSlug(r.Host)
			if slug == "" && class == RouteTenantOptional {
				slug = r.Header.Get(WorkspaceSlugHeader)
			}

			if slug == "" {
				if class == RouteTenantRequired {
					writeRejection(w, http.StatusBadRequest, "missing_tenant", "no workspace in request")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			workspace, err := tr.repo.GetBySlug(r.Context(), slug)
			if err != nil {
				if errors.Is(err, domain.ErrTenantNotFound) {
					if class == RouteTenantOptional {
						next.ServeHTTP(w, r)
						return
					}
					writeRejection(w, http.StatusNotFound, "tenant_not_found", "workspace not found")
					return
				}
				tr.logger.WithField("slug", slug).WithField("error", err.Error()).Error("Workspace resolution failed")
				writeRejection(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}

			if !workspace.Active && !tr.routes.AllowsInactive(r.URL.Path) {
				writeRejection(w, http.StatusForbidden, "tenant_inactive", "workspace is deactivated")
				return
			}

			ctx := domain.WithWorkspace(r.Context(), workspace)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeRejection(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}

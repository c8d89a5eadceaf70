package orgscope

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaigocloud/carebill-backend/api/middleware"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
)

// ResolveOrganizationID extracts the organization from the route and enforces
// tenant isolation: operators may only address their own organization, admins
// may address any.
func ResolveOrganizationID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "organizationId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid organization id")
	}

	ctx := r.Context()
	if middleware.RoleFromContext(ctx) == string(enums.ActorRoleAdmin) {
		return id, nil
	}

	own := middleware.OrganizationIDFromContext(ctx)
	if own == "" || own != id.String() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization access required")
	}
	return id, nil
}

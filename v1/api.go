package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/hooks"
	"github.com/opengrove/commune-api/v1/middleware"
)

// Server is the API server instance
type Server struct {
	AccountsService      *services.AccountsService
	AuthTokensService    *services.AuthTokensService
	ContentService       *services.ContentService
	NotificationsService *services.NotificationsService
	PolicyService        *services.PolicyService
	TrustService         *services.TrustService
	ViolationsService    *services.ViolationsService
}

// Setup mounts the API server to the given group
func (s *Server) Setup(g *gin.RouterGroup) {

	// Register middleware for all routes
	g.Use(middleware.CheckAuth(s.AuthTokensService))

	// Register all of the public hooks that require no authentication
	s.setupPublicHooks(g)

	// Register authenticated hooks
	s.setupAuthenticatedHooks(g)

}

// setupPublicHooks mounts API hooks that are publicly accessible
func (s *Server) setupPublicHooks(g *gin.RouterGroup) {

	// Register public API routes
	g.POST("/app/get-state", hooks.AppState())
	g.POST("/auth/login", hooks.AuthLogin(
		s.AccountsService,
		s.AuthTokensService,
	))

}

// setupAuthenticatedHooks mounts API hooks that require account authentication
func (s *Server) setupAuthenticatedHooks(g *gin.RouterGroup) {

	// Require login for everything after this
	g.Use(middleware.RequireLogin())

	// Register authenticated API routes
	g.POST("/auth/whoami", hooks.AuthWhoAmI(
		s.AuthTokensService,
	))
	g.POST("/content/submit", hooks.ContentSubmit(
		s.ContentService,
	))
	g.POST("/notifications/list", hooks.NotificationsList(
		s.NotificationsService,
	))
	g.POST("/notifications/mark-read", hooks.NotificationsMarkRead(
		s.NotificationsService,
	))

	// Moderation routes. Role checks happen inside the trust service,
	// before any mutation.
	g.POST("/mod/suspend", hooks.ModSuspend(
		s.TrustService,
	))
	g.POST("/mod/unsuspend", hooks.ModUnsuspend(
		s.TrustService,
	))
	g.POST("/mod/ban", hooks.ModBan(
		s.TrustService,
	))
	g.POST("/mod/unban", hooks.ModUnban(
		s.TrustService,
	))
	g.POST("/mod/update-suspension", hooks.ModUpdateSuspension(
		s.TrustService,
	))
	g.POST("/mod/violations", hooks.ModViolations(
		s.ViolationsService,
	))

	// Administration routes
	g.POST("/admin/role/update", hooks.AdminRoleUpdate(
		s.TrustService,
	))
	g.POST("/admin/policy/words/add", hooks.AdminPolicyWordAdd(
		s.PolicyService,
	))
	g.POST("/admin/policy/words/remove", hooks.AdminPolicyWordRemove(
		s.PolicyService,
	))
	g.POST("/admin/policy/domains/add", hooks.AdminPolicyDomainAdd(
		s.PolicyService,
	))
	g.POST("/admin/policy/domains/remove", hooks.AdminPolicyDomainRemove(
		s.PolicyService,
	))
	g.POST("/admin/policy/settings/update", hooks.AdminPolicySettingsUpdate(
		s.PolicyService,
	))

}

package authz

import (
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Service is a feature that can be shown or hidden per role.
type Service string

const (
	ServiceDashboard       Service = "dashboard"
	ServiceProfile         Service = "profile"
	ServiceProfileEdit     Service = "profileEdit"
	ServiceMentorsList     Service = "mentorsList"
	ServiceSessionRequest  Service = "sessionRequest"
	ServiceMentorDashboard Service = "mentorDashboard"
	ServiceAdminPanel      Service = "adminPanel"
	ServiceUserManagement  Service = "userManagement"
)

var commonServices = []Service{
	ServiceDashboard,
	ServiceProfile,
	ServiceProfileEdit,
	ServiceMentorsList,
	ServiceSessionRequest,
}

var serviceAccess = map[domain.Role]map[Service]bool{
	domain.RoleMember:        grant(commonServices),
	domain.RoleMentor:        grant(commonServices, ServiceMentorDashboard),
	domain.RoleAdministrator: grant(commonServices, ServiceAdminPanel, ServiceUserManagement),
}

func grant(base []Service, extra ...Service) map[Service]bool {
	m := make(map[Service]bool, len(base)+len(extra))
	for _, s := range base {
		m[s] = true
	}
	for _, s := range extra {
		m[s] = true
	}
	return m
}

// HasServiceAccess reports whether the identity's role includes service.
// A nil identity or a role outside the enumeration has no access.
func HasServiceAccess(identity *domain.Identity, service Service) bool {
	if identity == nil || identity.Role.Validate() != nil {
		return false
	}
	return serviceAccess[identity.Role][service]
}

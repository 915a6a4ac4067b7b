package fakebackend

import (
	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/permission"
)

// Default admin credentials
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin"
)

// DefaultAccount is an admin who may do everything except manage roles
func DefaultAccount() Account {
	return Account{
		User: model.User{
			ID:     "user-admin",
			Name:   "Admin",
			Email:  AdminEmail,
			RoleID: "role-admin",
			Active: true,
		},
		Password: AdminPassword,
		Modules:  DefaultModules(),
	}
}

// DefaultModules is the permission payload handed out at login
func DefaultModules() []permission.Module {
	crud := func(name, slug, route string, allowed bool) permission.Module {
		return permission.Module{
			Name: name,
			Slug: slug,
			Permissions: []permission.Permission{
				{Name: name, Slug: "read", Route: route, IsAllowed: allowed, ShowInMenu: true},
				{Name: "New " + slug, Slug: "create", Route: route + "/create", IsAllowed: allowed, ShowInMenu: false},
				{Name: "Edit " + slug, Slug: "update", Route: route + "/edit", IsAllowed: allowed, ShowInMenu: false},
			},
		}
	}
	return []permission.Module{
		crud("Invoices", "invoices", "/invoices", true),
		crud("Quotations", "quotations", "/quotations", true),
		crud("Clients", "clients", "/clients", true),
		crud("Products", "products", "/products", true),
		crud("Job files", "job-files", "/job-files", true),
		crud("Taxes", "taxes", "/taxes", true),
		crud("Users", "users", "/users", true),
		crud("Roles", "roles", "/roles", false),
		crud("Modules", "modules", "/modules", false),
	}
}

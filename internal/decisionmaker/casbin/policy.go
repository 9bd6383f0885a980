package casbin

// Model matches request paths with keyMatch2 patterns and actions with anchored regular expressions.
const Model = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

const (
	readWrite   = "^(get|post)$"
	itemActions = "^(get|put|patch|post|delete)$"
)

// DefaultPolicies grants agents their own workspace and admins the user directory.
var DefaultPolicies = [][]string{
	{"agent", "/api/v1/account", "^(get|put)$"},
	{"agent", "/api/v1/account/*", "^put$"},
	{"agent", "/api/v1/orders", readWrite},
	{"agent", "/api/v1/orders/*", itemActions},
	{"agent", "/api/v1/clients", readWrite},
	{"agent", "/api/v1/clients/*", itemActions},
	{"agent", "/api/v1/credentials", readWrite},
	{"agent", "/api/v1/credentials/*", itemActions},
	{"agent", "/api/v1/finances/*", "^get$"},
	{"agent", "/api/v1/reports", readWrite},
	{"agent", "/api/v1/reports/*", itemActions},
	{"admin", "/api/v1/users", "^get$"},
}

// DefaultGroupings lets admins inherit every agent permission.
var DefaultGroupings = [][]string{
	{"admin", "agent"},
}

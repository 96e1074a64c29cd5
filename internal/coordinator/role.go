package coordinator

// Role names the coordinator's current operating mode, following the
// distilled source's single-element-list singleton (§9, Global mutable
// state note), now a typed enum owned by the Coordinator instance.
type Role int

const (
	// RoleUndecided is the initial state before any fleet has been created.
	RoleUndecided Role = iota
	// RoleServer means the coordinator owns an in-process fleet created
	// by CreateShards.
	RoleServer
	// RoleMasterServer means the coordinator owns a fleet of remote
	// shard processes created by CreateRemoteShards.
	RoleMasterServer
	// RoleClient means the coordinator forwards DBFS requests without
	// owning any shards itself. Nothing in this module sets this role
	// automatically; it exists for an operator wiring a coordinator as a
	// pure client of another MASTER-SERVER, matching the distilled
	// source's role vocabulary even though no endpoint here produces it.
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "SERVER"
	case RoleMasterServer:
		return "MASTER-SERVER"
	case RoleClient:
		return "CLIENT"
	default:
		return "Undecided"
	}
}

package auth

type Role string

const (
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

var RoleValues = []string{
	string(RoleWorker),
	string(RoleAdmin),
}

// Subject is the authenticated caller as carried by access token claims.
type Subject struct {
	UserID        string
	WorkerID      string
	InstitutionID string
	Role          Role
}

func (s Subject) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanActOn reports whether the subject may read or write data of workerID.
func (s Subject) CanActOn(workerID string) bool {
	return s.IsAdmin() || (s.WorkerID != "" && s.WorkerID == workerID)
}

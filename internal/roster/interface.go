package roster

// RosterStore defines the interface for interacting with players and the
// match history.
type RosterStore interface {
	UpsertUser(user UserInfo) error
	UpsertUsers(users []UserInfo) error
	GetUser(userID string) (*UserInfo, error)
	GetUsers(userIDs []string) ([]UserInfo, error)
	GetAllUsers() ([]UserInfo, error)
	IsKnownUser(userID string) bool
	SetCustomName(userID, customName string) error

	RecordMatch(match *PlayedMatch) error
	GetAllMatches() ([]*PlayedMatch, error)
	DeleteMatch(matchID string) error

	Clear()
}

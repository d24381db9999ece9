package sessions

// Repo is durable key/value storage for the session fields. It survives
// process restarts the way browser local storage survives reloads.
type Repo interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(key string) error
}

package env

import (
	"github.com/denisbrodbeck/machineid"
)

// AppID scopes the protected machine ID to this application.
const AppID = "courier"

// MachineID retrieves the unique ID identifying the machine. The raw
// machine ID is hashed with AppID so it's not exposed on the network.
func MachineID() (string, error) {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		return "", err
	}
	// a shorter ID reads better in topics and prompts.
	if len(id) > 16 {
		id = id[:16]
	}
	return id, nil
}

package session

import (
	"encoding/json"
	"reflect"

	"github.com/bassista/go_sole/internal/model"
)

// Metadata holds versioning info for optimistic reloads.
type Metadata struct {
	LastUpdate int64 `json:"lastUpdate"` // Unix timestamp in milliseconds
}

// Document is the persisted session: the key-value entries the console
// reads on every authenticated request.
type Document struct {
	Metadata  Metadata    `json:"metadata"`
	Token     string      `json:"token,omitempty"`
	Role      string      `json:"role,omitempty"`
	Username  string      `json:"username,omitempty"`
	ExpiresAt int64       `json:"expiresAt,omitempty" validate:"gte=0"`
	User      *model.User `json:"user,omitempty"`
}

// LoggedIn reports whether the document carries a token.
func (d *Document) LoggedIn() bool {
	return d.Token != ""
}

// AreDocumentsEqual compares two documents ignoring Metadata.
func AreDocumentsEqual(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}

	aBytes, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bBytes, err := json.Marshal(b)
	if err != nil {
		return false
	}

	var aMap, bMap map[string]any
	if err := json.Unmarshal(aBytes, &aMap); err != nil {
		return false
	}
	if err := json.Unmarshal(bBytes, &bMap); err != nil {
		return false
	}

	delete(aMap, "metadata")
	delete(bMap, "metadata")

	return reflect.DeepEqual(aMap, bMap)
}

package models

// MaxMediaPerResource caps every resource's ordered media list.
const MaxMediaPerResource = 10

// MediaAsset references an object held by the remote object store.
// A zero RemoteID means the slot is empty.
type MediaAsset struct {
	RemoteID  string `bson:"remote_id" json:"remoteId"`
	SecureURL string `bson:"secure_url" json:"secureUrl"`
}

// IsZero reports whether the asset points at nothing.
func (m MediaAsset) IsZero() bool {
	return m.RemoteID == ""
}

// Location is the city/state/country triple shared by users and projects.
type Location struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

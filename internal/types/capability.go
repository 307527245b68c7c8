package types

// Shortcut binds a global hot-key to a capability
type Shortcut struct {
	ID           int64  `json:"id"`
	CapabilityID int64  `json:"capabilityID"`
	Key          string `json:"key"`
	CreateTime   string `json:"createTime"`
}

// Option is a persisted setting. CapabilityID 0 marks a general setting.
type Option struct {
	ID           int64  `json:"id"`
	CapabilityID int64  `json:"capabilityID"`
	Key          string `json:"key"`
	Val          string `json:"val"`
	Remark       string `json:"remark"`
	LastTime     string `json:"lastTime"`
}

// StorageStatus describes the open capability database
type StorageStatus struct {
	SchemaVersion   int64 `json:"schemaVersion"`
	OpenConnections int   `json:"openConnections"`
	InUse           int   `json:"inUse"`
}

package domain

// SyncResult reports the outcome of one posting run against the ERP.
type SyncResult struct {
	DocumentID    string     `json:"documentID"`
	ERPID         string     `json:"erpID,omitempty"`
	SyncStatus    SyncStatus `json:"syncStatus"`
	Attempts      int        `json:"attempts"`
	FailureReason string     `json:"failureReason,omitempty"`
}
